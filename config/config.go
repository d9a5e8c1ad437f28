package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// TomlServer holds the server section of the configuration file.
type TomlServer struct {
	Hostname     string `toml:"hostname"`
	AllowOrigins string `toml:"allow_origins"`
}

// TomlConfig represents the top-level configuration
type TomlConfig struct {
	Server TomlServer `toml:"server"`
}

func LoadConfig(path string) (*TomlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config TomlConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return &config, nil
}
