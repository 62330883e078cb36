// Package supervisor implements the per-server state machine, command
// scheduler, and update engine that own one managed server process.
package supervisor

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// ActivationMode is the policy governing when a server should be running.
type ActivationMode string

const (
	ActivationManual   ActivationMode = "manual"
	ActivationOnDemand ActivationMode = "on-demand"
	ActivationSession  ActivationMode = "session"
	ActivationAlways   ActivationMode = "always"
	ActivationDisabled ActivationMode = "disabled"
)

// AdapterDescriptor describes one object adapter a server exposes.
type AdapterDescriptor struct {
	ID             string `yaml:"id" validate:"required"`
	ServerLifetime bool   `yaml:"serverLifetime"`
}

// DBEnvDescriptor describes one Berkeley-DB-style environment directory.
type DBEnvDescriptor struct {
	Name       string   `yaml:"name" validate:"required"`
	Properties []string `yaml:"properties"`
}

// DistributionDescriptor describes content mirrored by the Patcher.
type DistributionDescriptor struct {
	Source       string   `yaml:"source"`
	Directories  []string `yaml:"directories"`
}

// PropertySet is one named set of configuration-file lines, keyed by the
// configuration file name (e.g. "config" for config/config).
type PropertySet struct {
	Name  string   `yaml:"name" validate:"required"`
	Lines []string `yaml:"lines"`
}

// Descriptor is the immutable desired shape of one managed server.
//
// Two descriptors are semantically equal (see Equivalent) when every
// behaviorally relevant field matches excluding Revision itself.
type Descriptor struct {
	ID                 string `yaml:"id" validate:"required"`
	Application        string `yaml:"application"`
	UUID               string `yaml:"uuid" validate:"required"`
	Revision           int64  `yaml:"revision"`
	SessionID          string `yaml:"sessionId"`

	Exe                string         `yaml:"exe" validate:"required"`
	Pwd                string         `yaml:"pwd"`
	Options            []string       `yaml:"options"`
	Envs               []string       `yaml:"envs"`
	User               string         `yaml:"user"`
	Activation         ActivationMode `yaml:"activation" validate:"required,oneof=manual on-demand session always disabled"`
	ActivationTimeout  string         `yaml:"activationTimeout"`
	DeactivationTimeout string        `yaml:"deactivationTimeout"`
	ProcessRegistered  bool           `yaml:"processRegistered"`

	Adapters   []AdapterDescriptor `yaml:"adapters"`
	DBEnvs     []DBEnvDescriptor   `yaml:"dbEnvs"`
	Properties []PropertySet       `yaml:"properties"`
	Distrib    *DistributionDescriptor `yaml:"distrib"`

	Logs               []string `yaml:"logs"`
	ApplicationDistrib bool     `yaml:"applicationDistrib"`

	// ActivationTimeoutSeconds/DeactivationTimeoutSeconds are the parsed,
	// defaulted timeouts resolved by the update engine (§4.5 step 5);
	// they are not part of the wire descriptor and are recomputed on
	// every load.
	ActivationTimeoutSeconds   int `yaml:"-"`
	DeactivationTimeoutSeconds int `yaml:"-"`
}

// Validate checks the descriptor's struct-tag constraints and the
// elementwise validity of its adapter/db-env/property-set children.
func (d *Descriptor) Validate() error {
	if err := validate.Struct(d); err != nil {
		return err
	}
	for i := range d.Adapters {
		if err := validate.Struct(&d.Adapters[i]); err != nil {
			return err
		}
	}
	for i := range d.DBEnvs {
		if err := validate.Struct(&d.DBEnvs[i]); err != nil {
			return err
		}
	}
	for i := range d.Properties {
		if err := validate.Struct(&d.Properties[i]); err != nil {
			return err
		}
	}
	return nil
}

// propertySetMap indexes Properties by Name for equivalence/update checks.
func (d *Descriptor) propertySetMap() map[string][]string {
	m := make(map[string][]string, len(d.Properties))
	for _, ps := range d.Properties {
		m[ps.Name] = ps.Lines
	}
	return m
}

// adapterIDs returns the set of adapter ids this descriptor declares.
func (d *Descriptor) adapterIDs() map[string]bool {
	ids := make(map[string]bool, len(d.Adapters))
	for _, a := range d.Adapters {
		ids[a.ID] = true
	}
	return ids
}

// serverLifetimeAdapterIDs returns the subset of adapter ids marked
// serverLifetime.
func (d *Descriptor) serverLifetimeAdapterIDs() map[string]bool {
	ids := make(map[string]bool)
	for _, a := range d.Adapters {
		if a.ServerLifetime {
			ids[a.ID] = true
		}
	}
	return ids
}
