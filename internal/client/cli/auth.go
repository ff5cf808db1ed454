package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/ghosttips/internal/client/client"
	"github.com/dmitrijs2005/ghosttips/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// getSecret is swapped in tests to avoid touching the terminal.
var getSecret = GetSecret

// accountFromToken reads the account claim without verifying the
// signature; the server verifies it on every call.
func accountFromToken(token string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", common.ErrInvalidToken
	}
	account, _ := claims["account"].(string)
	if account == "" {
		return "", common.ErrInvalidToken
	}
	return account, nil
}

// useToken installs token and confirms it with the server. An unreachable
// server leaves the token in place so it can be used once back online.
func (a *App) useToken(ctx context.Context, token string) error {
	account, err := accountFromToken(token)
	if err != nil {
		return err
	}

	a.client.SetAccessToken(token)

	ctx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
	defer cancel()

	_, err = a.client.Allowance(ctx)
	switch {
	case err == nil:
	case errors.Is(err, client.ErrUnavailable):
		fmt.Fprintln(a.out, "Server unavailable, token not verified")
	default:
		a.client.SetAccessToken("")
		return err
	}

	a.account = account
	fmt.Fprintf(a.out, "Signed in as %s\n", account)
	return nil
}

// Login reads an access token without echo and signs in with it.
func (a *App) Login(ctx context.Context) error {
	b, err := getSecret("Access token", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(b)

	token := strings.TrimSpace(string(b))
	if token == "" {
		return fmt.Errorf("%w: token is empty", common.ErrorInvalidInput)
	}
	return a.useToken(ctx, token)
}

func (a *App) Logout(ctx context.Context) error {
	a.client.SetAccessToken("")
	a.account = ""
	fmt.Fprintln(a.out, "Signed out")
	return nil
}
