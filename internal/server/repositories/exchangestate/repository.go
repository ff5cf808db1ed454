package exchangestate

import (
	"context"

	"github.com/dmitrijs2005/ghosttips/internal/ledger"
)

// Repository persists the single exchange state row.
type Repository interface {
	// Get returns common.ErrorNotFound when the ledger was never started.
	Get(ctx context.Context) (ledger.Exchange, error)
	Upsert(ctx context.Context, ex ledger.Exchange) error
}
