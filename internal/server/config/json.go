package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/ghosttips/internal/flagx"
	"github.com/dmitrijs2005/ghosttips/internal/timex"
)

// JsonConfig is the on-disk shape of the JSON config file. Durations accept
// "90s" style strings or integer nanoseconds. Zero values leave the
// current setting untouched.
type JsonConfig struct {
	GRPCAddr                    string         `json:"grpc_addr"`
	HTTPAddr                    string         `json:"http_addr"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	ExchangeRate                uint64         `json:"exchange_rate"`
	MaxNameLength               int            `json:"max_name_length"`
	MaxDescriptionLength        int            `json:"max_description_length"`
	MaxMessageLength            int            `json:"max_message_length"`
	EncryptionSecret            string         `json:"encryption_secret"`
	EncryptionSalt              string         `json:"encryption_salt"`
	NATSURL                     string         `json:"nats_url"`
	NATSSubjectPrefix           string         `json:"nats_subject_prefix"`
	S3RootUser                  string         `json:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
	SnapshotURLTTL              timex.Duration `json:"snapshot_url_ttl"`
	LogLevel                    string         `json:"log_level"`
	ShutdownTimeout             timex.Duration `json:"shutdown_timeout"`
}

// parseJSON overlays the file named by -c / -config, if any.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var c JsonConfig
	if err := json.Unmarshal(b, &c); err != nil {
		return err
	}

	setString(&cfg.GRPCAddr, c.GRPCAddr)
	setString(&cfg.HTTPAddr, c.HTTPAddr)
	setString(&cfg.DatabaseDSN, c.DatabaseDSN)
	setString(&cfg.SecretKey, c.SecretKey)
	setString(&cfg.EncryptionSecret, c.EncryptionSecret)
	setString(&cfg.EncryptionSalt, c.EncryptionSalt)
	setString(&cfg.NATSURL, c.NATSURL)
	setString(&cfg.NATSSubjectPrefix, c.NATSSubjectPrefix)
	setString(&cfg.S3RootUser, c.S3RootUser)
	setString(&cfg.S3RootPassword, c.S3RootPassword)
	setString(&cfg.S3Bucket, c.S3Bucket)
	setString(&cfg.S3Region, c.S3Region)
	setString(&cfg.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&cfg.LogLevel, c.LogLevel)

	if c.AccessTokenValidityDuration.Duration != 0 {
		cfg.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.SnapshotURLTTL.Duration != 0 {
		cfg.SnapshotURLTTL = c.SnapshotURLTTL.Duration
	}
	if c.ShutdownTimeout.Duration != 0 {
		cfg.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.ExchangeRate != 0 {
		cfg.ExchangeRate = c.ExchangeRate
	}
	if c.MaxNameLength != 0 {
		cfg.MaxNameLength = c.MaxNameLength
	}
	if c.MaxDescriptionLength != 0 {
		cfg.MaxDescriptionLength = c.MaxDescriptionLength
	}
	if c.MaxMessageLength != 0 {
		cfg.MaxMessageLength = c.MaxMessageLength
	}

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
