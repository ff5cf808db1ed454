package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	ServerEndpointAddr  string
	OnlineCheckInterval time.Duration
	RequestTimeout      time.Duration
	AccessToken         string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.RequestTimeout = 5 * time.Second
	c.AccessToken = ""
}

// Load applies environment, JSON and flags on top of the defaults.
func Load(args []string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	parseEnv(cfg, lookup)
	if err := parseJson(cfg, args); err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	if cfg.ServerEndpointAddr == "" {
		return nil, fmt.Errorf("server address is empty")
	}
	if cfg.OnlineCheckInterval <= 0 {
		return nil, fmt.Errorf("online check interval must be positive")
	}

	return cfg, nil
}

// LoadConfig loads the configuration for the running process.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:], os.LookupEnv)
}

func parseEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup("GHOSTTIPS_SERVER"); ok && v != "" {
		cfg.ServerEndpointAddr = v
	}
	if v, ok := lookup("GHOSTTIPS_TOKEN"); ok {
		cfg.AccessToken = v
	}
}
