package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server         ServerConfig `yaml:"server"`
	State          StateConfig  `yaml:"state"`
	Demo           DemoConfig   `yaml:"demo"`
	AllowedOrigins []string     `yaml:"allowed_origins"`
	AuthToken      string       `yaml:"auth_token"`
}

type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

type StateConfig struct {
	// Dir overrides the XDG state directory for the gamification file.
	Dir string `yaml:"dir"`
}

type DemoConfig struct {
	// Interval between synthetic events in demo mode.
	Interval time.Duration `yaml:"interval"`
}

// Load reads the config at path over the built-in defaults. A missing
// file is not an error: the sidecar runs with defaults out of the box.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: 8573,
			Host: "127.0.0.1",
		},
		Demo: DemoConfig{
			Interval: 3 * time.Second,
		},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
