// Package config loads server configuration from YAML files.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is the ledgerlite-server configuration.
type Config struct {
	AppName string `mapstructure:"app_name"`

	Ledger struct {
		Dir  string `mapstructure:"dir"`
		Path string `mapstructure:"path"`
	} `mapstructure:"ledger"`

	Server struct {
		Addr string `mapstructure:"addr"`

		Auth struct {
			Enabled  bool   `mapstructure:"enabled"`
			Secret   string `mapstructure:"secret"`
			Issuer   string `mapstructure:"issuer"`
			Audience string `mapstructure:"audience"`
		} `mapstructure:"auth"`
	} `mapstructure:"server"`
}

// Default returns the configuration used when no file is given: an
// in-memory ledger served on localhost.
func Default() *Config {
	cfg := &Config{AppName: "ledgerlite"}
	cfg.Ledger.Path = "ledger.jsonl"
	cfg.Server.Addr = "127.0.0.1:7090"
	return cfg
}

// Load reads a YAML config file from path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}
