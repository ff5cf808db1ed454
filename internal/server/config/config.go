// Package config builds the server configuration from defaults, an
// optional .env file and GHOSTTIPS_* environment variables, an optional
// JSON file and finally command-line flags. Later sources win.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/ghosttips/internal/common"
)

// Config holds runtime settings for the GhostTips server.
//
// An empty DatabaseDSN selects the in-memory store. An empty
// EncryptionSecret selects the plaintext-backed provider, which is only
// suitable for local runs and is rejected together with a database. An empty NATSURL disables event publishing and
// an empty S3Bucket disables leaderboard exports.
type Config struct {
	GRPCAddr string
	HTTPAddr string

	DatabaseDSN string

	SecretKey                   string
	AccessTokenValidityDuration time.Duration

	ExchangeRate         uint64
	MaxNameLength        int
	MaxDescriptionLength int
	MaxMessageLength     int

	EncryptionSecret string
	EncryptionSalt   string

	NATSURL           string
	NATSSubjectPrefix string

	S3RootUser     string
	S3RootPassword string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	SnapshotURLTTL time.Duration

	LogLevel        string
	ShutdownTimeout time.Duration
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secrets are insecure and must be overridden in production.
func (c *Config) LoadDefaults() {
	c.GRPCAddr = ":50051"
	c.HTTPAddr = ":8080"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 15 * time.Minute
	c.ExchangeRate = common.DefaultExchangeRate
	c.MaxNameLength = 64
	c.MaxDescriptionLength = 280
	c.MaxMessageLength = 280
	c.EncryptionSecret = ""
	c.EncryptionSalt = "ghosttips"
	c.NATSURL = ""
	c.NATSSubjectPrefix = "ghosttips"
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = ""
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.SnapshotURLTTL = 15 * time.Minute
	c.LogLevel = "info"
	c.ShutdownTimeout = 10 * time.Second
}

// Load applies every configuration source to the defaults. args are the
// command-line arguments without the program name; lookup reads the
// process environment.
func Load(args []string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(cfg, args, lookup); err != nil {
		return nil, fmt.Errorf("env: %w", err)
	}
	if err := parseJSON(cfg, args); err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadConfig loads the configuration for the running process.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:], os.LookupEnv)
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch {
	case c.ExchangeRate == 0:
		return fmt.Errorf("exchange rate must be positive")
	case c.SecretKey == "":
		return fmt.Errorf("secret key is empty")
	case c.AccessTokenValidityDuration <= 0:
		return fmt.Errorf("access token validity must be positive")
	case c.MaxNameLength <= 0 || c.MaxDescriptionLength < 0 || c.MaxMessageLength < 0:
		return fmt.Errorf("text limits must not be negative and the name limit must be positive")
	case c.DatabaseDSN != "" && c.EncryptionSecret == "":
		// In-memory handles do not survive a restart, persisted ones must.
		return fmt.Errorf("encryption secret is required when a database is configured")
	}
	return nil
}
