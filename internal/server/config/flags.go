package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/ghosttips/internal/flagx"
)

// parseFlags applies the short command-line flags:
//
//	-a string   gRPC bind address
//	-w string   public HTTP bind address
//	-d string   PostgreSQL DSN (empty: in-memory store)
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r uint     exchange rate, tokens per base unit
//	-k string   encryption secret (empty: plaintext provider)
//	-n string   NATS URL (empty: no events)
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket (empty: no leaderboard exports)
//	-g string   S3 region
//	-e string   S3 base endpoint
//	-l string   log level
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-w", "-d", "-s", "-t", "-r", "-k", "-n", "-u", "-p", "-b", "-g", "-e", "-l"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.GRPCAddr, "a", cfg.GRPCAddr, "gRPC address and port")
	fs.StringVar(&cfg.HTTPAddr, "w", cfg.HTTPAddr, "public HTTP address and port")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "secret key")
	validity := fs.Int("t", int(cfg.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	fs.Uint64Var(&cfg.ExchangeRate, "r", cfg.ExchangeRate, "exchange rate")
	fs.StringVar(&cfg.EncryptionSecret, "k", cfg.EncryptionSecret, "encryption secret")
	fs.StringVar(&cfg.NATSURL, "n", cfg.NATSURL, "NATS URL")
	fs.StringVar(&cfg.S3RootUser, "u", cfg.S3RootUser, "S3 root user")
	fs.StringVar(&cfg.S3RootPassword, "p", cfg.S3RootPassword, "S3 root password")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "S3 bucket")
	fs.StringVar(&cfg.S3Region, "g", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3BaseEndpoint, "e", cfg.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	visited := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			visited = true
		}
	})
	if visited {
		cfg.AccessTokenValidityDuration = time.Duration(*validity) * time.Minute
	}

	return nil
}
