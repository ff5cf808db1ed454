package client

import (
	"context"

	"github.com/dmitrijs2005/ghosttips/internal/client/models"
)

// Client is the surface the CLI drives.
type Client interface {
	Close() error
	SetAccessToken(token string)
	Ping(ctx context.Context) error
	Exchange(ctx context.Context) (models.Exchange, error)

	Deposit(ctx context.Context, baseAmount uint64) (minted uint64, reserve uint64, err error)
	Withdraw(ctx context.Context, tokenAmount uint64) (payout uint64, burned uint64, err error)
	DecryptBalance(ctx context.Context) (uint64, error)
	EncryptedBalance(ctx context.Context, account string) (models.Ciphertext, error)

	CreateTipJar(ctx context.Context, name, description, category string) (uint64, error)
	SetTipJarActive(ctx context.Context, jarID uint64, active bool) error
	TipJar(ctx context.Context, jarID uint64) (models.Jar, error)
	ListTipJars(ctx context.Context, offset, limit uint64) ([]models.Jar, uint64, error)
	JarsOwnedBy(ctx context.Context, account string) ([]uint64, error)
	TopJars(ctx context.Context, n uint64) ([]models.Standing, error)

	Approve(ctx context.Context, amount uint64) error
	Allowance(ctx context.Context) (uint64, error)
	SendTip(ctx context.Context, jarID, amount uint64, message string) (uint64, error)
	ReceivedTips(ctx context.Context, jarID uint64) ([]models.Tip, error)
	DecryptJarTotal(ctx context.Context, jarID uint64) (uint64, error)
	WithdrawFromTipJar(ctx context.Context, jarID, amount uint64) error

	ExportLeaderboard(ctx context.Context, n uint64) (key string, url string, err error)
}
