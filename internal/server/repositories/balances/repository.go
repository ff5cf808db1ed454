package balances

import (
	"context"

	"github.com/dmitrijs2005/ghosttips/internal/fhe"
)

// Repository stores one encrypted balance per account.
type Repository interface {
	List(ctx context.Context) (map[string]fhe.Value, error)
	Upsert(ctx context.Context, account string, v fhe.Value) error
}
