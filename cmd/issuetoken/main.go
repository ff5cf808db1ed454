// Command issuetoken signs an access token for an account with the
// server's secret key. Accounts live outside GhostTips; this is how an
// operator hands one out. The key is read from the same environment the
// server uses.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/ghosttips/internal/server/auth"
	"github.com/dmitrijs2005/ghosttips/internal/server/config"
)

func main() {
	cfg, err := config.Load(nil, os.LookupEnv)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	account := flag.String("account", "", "account to issue the token for")
	validity := flag.Duration("validity", cfg.AccessTokenValidityDuration, "token validity")
	flag.Parse()

	if *account == "" {
		log.Fatal("-account is required")
	}

	token, err := auth.GenerateToken(*account, []byte(cfg.SecretKey), *validity)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}
	fmt.Println(token)
}
