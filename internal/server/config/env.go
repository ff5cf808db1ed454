package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/dmitrijs2005/ghosttips/internal/flagx"
	"github.com/joho/godotenv"
)

const envPrefix = "GHOSTTIPS_"

const defaultEnvFile = ".env"

// readEnvFile is a seam for tests.
var readEnvFile = godotenv.Read

// parseEnv overlays values from a dotenv file and the environment. The file
// is given with -env-file; otherwise ./.env is used when present. Process
// environment variables win over the file.
func parseEnv(cfg *Config, args []string, lookup func(string) (string, bool)) error {
	file := flagx.EnvFileFlag(args)
	explicit := file != ""
	if !explicit {
		file = defaultEnvFile
	}

	fromFile, err := readEnvFile(file)
	if err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read %s: %w", file, err)
		}
		fromFile = map[string]string{}
	}

	get := func(name string) (string, bool) {
		if v, ok := lookup(envPrefix + name); ok {
			return v, true
		}
		v, ok := fromFile[envPrefix+name]
		return v, ok
	}

	strs := map[string]*string{
		"GRPC_ADDR":           &cfg.GRPCAddr,
		"HTTP_ADDR":           &cfg.HTTPAddr,
		"DATABASE_DSN":        &cfg.DatabaseDSN,
		"SECRET_KEY":          &cfg.SecretKey,
		"ENCRYPTION_SECRET":   &cfg.EncryptionSecret,
		"ENCRYPTION_SALT":     &cfg.EncryptionSalt,
		"NATS_URL":            &cfg.NATSURL,
		"NATS_SUBJECT_PREFIX": &cfg.NATSSubjectPrefix,
		"S3_ROOT_USER":        &cfg.S3RootUser,
		"S3_ROOT_PASSWORD":    &cfg.S3RootPassword,
		"S3_BUCKET":           &cfg.S3Bucket,
		"S3_REGION":           &cfg.S3Region,
		"S3_BASE_ENDPOINT":    &cfg.S3BaseEndpoint,
		"LOG_LEVEL":           &cfg.LogLevel,
	}
	for name, dst := range strs {
		if v, ok := get(name); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"MAX_NAME_LENGTH":        &cfg.MaxNameLength,
		"MAX_DESCRIPTION_LENGTH": &cfg.MaxDescriptionLength,
		"MAX_MESSAGE_LENGTH":     &cfg.MaxMessageLength,
	}
	for name, dst := range ints {
		if v, ok := get(name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, name, err)
			}
			*dst = n
		}
	}

	durations := map[string]*time.Duration{
		"ACCESS_TOKEN_VALIDITY": &cfg.AccessTokenValidityDuration,
		"SNAPSHOT_URL_TTL":      &cfg.SnapshotURLTTL,
		"SHUTDOWN_TIMEOUT":      &cfg.ShutdownTimeout,
	}
	for name, dst := range durations {
		if v, ok := get(name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, name, err)
			}
			*dst = d
		}
	}

	if v, ok := get("EXCHANGE_RATE"); ok {
		rate, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sEXCHANGE_RATE: %w", envPrefix, err)
		}
		cfg.ExchangeRate = rate
	}

	return nil
}
