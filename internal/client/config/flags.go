package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/ghosttips/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string      address and port of the server
//	-i int         online check interval (in seconds)
//	-token string  access token
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-i", "-token"})

	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.AccessToken, "token", cfg.AccessToken, "access token")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	return nil
}
