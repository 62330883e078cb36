package supervisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEquivalent_Nil(t *testing.T) {
	assert.True(t, Equivalent(nil, nil))
	assert.False(t, Equivalent(validDescriptor(), nil))
	assert.False(t, Equivalent(nil, validDescriptor()))
}

func TestEquivalent_IgnoresRevision(t *testing.T) {
	a := validDescriptor()
	a.Revision = 1
	b := validDescriptor()
	b.Revision = 2
	assert.True(t, Equivalent(a, b))
}

func TestEquivalent_DetectsFieldChanges(t *testing.T) {
	base := validDescriptor()

	changed := validDescriptor()
	changed.Exe = "/usr/bin/false"
	assert.False(t, Equivalent(base, changed))

	changed = validDescriptor()
	changed.Options = []string{"--verbose"}
	assert.False(t, Equivalent(base, changed))

	changed = validDescriptor()
	changed.Properties = []PropertySet{{Name: "config", Lines: []string{"A=1"}}}
	assert.False(t, Equivalent(base, changed))
}

func TestEquivalent_PropertiesOrderIndependent(t *testing.T) {
	a := validDescriptor()
	a.Properties = []PropertySet{
		{Name: "config", Lines: []string{"A=1"}},
		{Name: "other", Lines: []string{"B=2"}},
	}
	b := validDescriptor()
	b.Properties = []PropertySet{
		{Name: "other", Lines: []string{"B=2"}},
		{Name: "config", Lines: []string{"A=1"}},
	}
	assert.True(t, Equivalent(a, b))
}

func TestEquivalent_DistribDirectoriesOrderIndependent(t *testing.T) {
	a := validDescriptor()
	a.Distrib = &DistributionDescriptor{Source: "src", Directories: []string{"b", "a"}}
	b := validDescriptor()
	b.Distrib = &DistributionDescriptor{Source: "src", Directories: []string{"a", "b"}}
	assert.True(t, Equivalent(a, b))
}

func TestEquivalent_AdaptersOrderSensitive(t *testing.T) {
	a := validDescriptor()
	a.Adapters = []AdapterDescriptor{{ID: "a1"}, {ID: "a2"}}
	b := validDescriptor()
	b.Adapters = []AdapterDescriptor{{ID: "a2"}, {ID: "a1"}}
	assert.False(t, Equivalent(a, b))
}
