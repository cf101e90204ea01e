// Package config loads the engine settings: which virtual network proxies
// attach to, the routing gateway inside that fabric, the image to launch,
// and the readiness-poll policy. Everything is defaulted for the lab
// environment so the tool runs with no config file present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Defaults for the lab environment.
const (
	DefaultConfigFile = "/etc/fireprox/config.yaml"
	DefaultNetwork    = "sec504cloudsim-far"
	DefaultGateway    = "10.200.0.2"
	DefaultImage      = "execute-api.amazonaws.com"
	DefaultHostsFile  = "/etc/hosts"

	DefaultPollInterval = time.Second
	DefaultPollTimeout  = 60 * time.Second
)

// ConfigFileEnv overrides the config file location.
const ConfigFileEnv = "FIREPROX_CONFIG"

// Settings holds the engine configuration.
type Settings struct {
	// Network is the virtual network proxy containers attach to.
	Network string `mapstructure:"network"`
	// Gateway is the address the container's default route is pointed at
	// after launch, so traffic routes back through the host fabric.
	Gateway string `mapstructure:"gateway"`
	// Image is the container image backing every proxy.
	Image string `mapstructure:"image"`
	// HostsFile is the host-resolution table kept in sync with proxies.
	HostsFile string `mapstructure:"hosts_file"`
	// PollInterval and PollTimeout bound the IP-readiness poll.
	PollInterval time.Duration `mapstructure:"poll_interval"`
	PollTimeout  time.Duration `mapstructure:"poll_timeout"`
}

// Load reads settings from the config file (DefaultConfigFile, overridable
// via FIREPROX_CONFIG) and FIREPROX_* environment variables. A missing
// file is not an error; a malformed one is.
func Load() (*Settings, error) {
	v := viper.New()

	v.SetDefault("network", DefaultNetwork)
	v.SetDefault("gateway", DefaultGateway)
	v.SetDefault("image", DefaultImage)
	v.SetDefault("hosts_file", DefaultHostsFile)
	v.SetDefault("poll_interval", DefaultPollInterval)
	v.SetDefault("poll_timeout", DefaultPollTimeout)

	path := os.Getenv(ConfigFileEnv)
	if path == "" {
		path = DefaultConfigFile
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("FIREPROX")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *fs.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return &s, nil
}
