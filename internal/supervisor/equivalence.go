package supervisor

import "sort"

// Equivalent reports whether a and b are semantically equal per §4.1:
// every behaviorally relevant field matches excluding Revision itself.
// A load with a semantically-equal descriptor is a no-op reload — only
// the revision record changes on disk.
func Equivalent(a, b *Descriptor) bool {
	if a == nil || b == nil {
		return a == b
	}

	if a.ID != b.ID ||
		a.Application != b.Application ||
		a.UUID != b.UUID ||
		a.SessionID != b.SessionID ||
		a.Exe != b.Exe ||
		a.Pwd != b.Pwd ||
		a.User != b.User ||
		a.Activation != b.Activation ||
		a.ActivationTimeout != b.ActivationTimeout ||
		a.DeactivationTimeout != b.DeactivationTimeout ||
		a.ApplicationDistrib != b.ApplicationDistrib ||
		a.ProcessRegistered != b.ProcessRegistered {
		return false
	}

	if !stringSliceEqual(a.Options, b.Options) || !stringSliceEqual(a.Envs, b.Envs) || !stringSliceEqual(a.Logs, b.Logs) {
		return false
	}

	if !propertiesEqual(a.Properties, b.Properties) {
		return false
	}

	if !distribEqual(a.Distrib, b.Distrib) {
		return false
	}

	if !adaptersEqual(a.Adapters, b.Adapters) {
		return false
	}

	if !dbEnvsEqual(a.DBEnvs, b.DBEnvs) {
		return false
	}

	return true
}

func stringSliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func propertiesEqual(a, b []PropertySet) bool {
	am, bm := toPropertyMap(a), toPropertyMap(b)
	if len(am) != len(bm) {
		return false
	}
	for name, lines := range am {
		other, ok := bm[name]
		if !ok || !stringSliceEqual(lines, other) {
			return false
		}
	}
	return true
}

func toPropertyMap(sets []PropertySet) map[string][]string {
	m := make(map[string][]string, len(sets))
	for _, s := range sets {
		m[s.Name] = s.Lines
	}
	return m
}

func distribEqual(a, b *DistributionDescriptor) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Source != b.Source {
		return false
	}
	return stringSliceEqual(sortedCopy(a.Directories), sortedCopy(b.Directories))
}

func sortedCopy(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	sort.Strings(out)
	return out
}

func adaptersEqual(a, b []AdapterDescriptor) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].ServerLifetime != b[i].ServerLifetime {
			return false
		}
	}
	return true
}

func dbEnvsEqual(a, b []DBEnvDescriptor) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || !stringSliceEqual(a[i].Properties, b[i].Properties) {
			return false
		}
	}
	return true
}
