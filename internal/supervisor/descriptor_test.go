package supervisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDescriptor() *Descriptor {
	return &Descriptor{
		ID:         "srv1",
		UUID:       "uuid-1",
		Exe:        "/usr/bin/true",
		Activation: ActivationManual,
	}
}

func TestDescriptorValidate_Valid(t *testing.T) {
	d := validDescriptor()
	require.NoError(t, d.Validate())
}

func TestDescriptorValidate_MissingRequiredFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(d *Descriptor)
	}{
		{"missing id", func(d *Descriptor) { d.ID = "" }},
		{"missing uuid", func(d *Descriptor) { d.UUID = "" }},
		{"missing exe", func(d *Descriptor) { d.Exe = "" }},
		{"missing activation", func(d *Descriptor) { d.Activation = "" }},
		{"invalid activation", func(d *Descriptor) { d.Activation = "bogus" }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d := validDescriptor()
			c.mutate(d)
			assert.Error(t, d.Validate())
		})
	}
}

func TestDescriptorValidate_AdapterElementwise(t *testing.T) {
	d := validDescriptor()
	d.Adapters = []AdapterDescriptor{{ID: ""}}
	assert.Error(t, d.Validate())

	d.Adapters = []AdapterDescriptor{{ID: "a1", ServerLifetime: true}}
	assert.NoError(t, d.Validate())
}

func TestDescriptorValidate_DBEnvElementwise(t *testing.T) {
	d := validDescriptor()
	d.DBEnvs = []DBEnvDescriptor{{Name: ""}}
	assert.Error(t, d.Validate())

	d.DBEnvs = []DBEnvDescriptor{{Name: "env1"}}
	assert.NoError(t, d.Validate())
}

func TestDescriptor_AdapterIDs(t *testing.T) {
	d := validDescriptor()
	d.Adapters = []AdapterDescriptor{
		{ID: "a1", ServerLifetime: true},
		{ID: "a2"},
	}
	ids := d.adapterIDs()
	assert.True(t, ids["a1"])
	assert.True(t, ids["a2"])

	lifetime := d.serverLifetimeAdapterIDs()
	assert.True(t, lifetime["a1"])
	assert.False(t, lifetime["a2"])
}

func TestDescriptor_PropertySetMap(t *testing.T) {
	d := validDescriptor()
	d.Properties = []PropertySet{
		{Name: "config", Lines: []string{"A=1", "B=2"}},
	}
	m := d.propertySetMap()
	assert.Equal(t, []string{"A=1", "B=2"}, m["config"])
}
