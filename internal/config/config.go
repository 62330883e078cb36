// Package config loads node-wide configuration for the supervisor host
// process, following the teacher's viper-based load/defaults pattern.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// NodeConfig is the node-wide configuration read by the enclosing node
// process (§6 of the supervisor spec: these knobs belong to the node,
// not to the per-server core).
type NodeConfig struct {
	// DisableOnFailure is IceGrid.Node.DisableOnFailure: seconds before
	// an auto re-enable after a forced failure (0 = never, <0 = manual
	// re-enable only).
	DisableOnFailure int `mapstructure:"disable_on_failure"`

	// AllowRunningServersAsRoot is IceGrid.Node.AllowRunningServersAsRoot.
	AllowRunningServersAsRoot bool `mapstructure:"allow_running_servers_as_root"`

	// OutputDir, when non-empty, causes Ice.StdOut/Ice.StdErr to be
	// synthesized into <OutputDir>/<id>.out|.err.
	OutputDir string `mapstructure:"output_dir"`

	// RedirectStdErrToStdOut merges a server's stderr into its stdout.
	RedirectStdErrToStdOut bool `mapstructure:"redirect_stderr_to_stdout"`

	// PropertyOverrides are appended to every property set synthesized
	// by the update engine (§4.5 step 7).
	PropertyOverrides []string `mapstructure:"property_overrides"`

	// ServersDir is the root under which <ServersDir>/<id>/ is laid out.
	ServersDir string `mapstructure:"servers_dir"`

	// WaitTime is the default activation/deactivation timeout (seconds)
	// substituted when a descriptor's timeout fails to parse or is zero.
	WaitTime int `mapstructure:"wait_time"`

	Log   LogConfig   `mapstructure:"log"`
	Admin AdminConfig `mapstructure:"admin"`
}

// LogConfig mirrors pkg/logger.Config, kept distinct so viper can bind it
// independently of the logger package's own zero-dependency type.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// AdminConfig configures the admin HTTP surface.
type AdminConfig struct {
	ListenAddr      string        `mapstructure:"listen_addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoadConfig reads configuration from configPath (if non-empty) merged
// with environment-variable overrides (SUPERVISOR_ prefix, "." -> "_").
func LoadConfig(configPath string) (*NodeConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("supervisor")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, err
			}
		}
	}

	var cfg NodeConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("disable_on_failure", 0)
	v.SetDefault("allow_running_servers_as_root", false)
	v.SetDefault("output_dir", "")
	v.SetDefault("redirect_stderr_to_stdout", false)
	v.SetDefault("property_overrides", []string{})
	v.SetDefault("servers_dir", "/var/lib/gridnode/servers")
	v.SetDefault("wait_time", 60)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("admin.listen_addr", ":8090")
	v.SetDefault("admin.read_timeout", "10s")
	v.SetDefault("admin.write_timeout", "10s")
	v.SetDefault("admin.shutdown_timeout", "15s")
}
