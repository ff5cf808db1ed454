package tips

import (
	"context"

	"github.com/dmitrijs2005/ghosttips/internal/ledger"
)

// Repository is the append-only log of received tips.
type Repository interface {
	// List returns all tips grouped by jar, each group ordered by seq.
	List(ctx context.Context) (map[uint64][]ledger.Tip, error)
	Create(ctx context.Context, tip ledger.Tip) error
}
