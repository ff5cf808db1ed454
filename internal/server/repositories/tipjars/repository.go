package tipjars

import (
	"context"

	"github.com/dmitrijs2005/ghosttips/internal/ledger"
)

// Repository stores tip jars. Jars are never deleted.
type Repository interface {
	// List returns every jar ordered by id.
	List(ctx context.Context) ([]ledger.TipJar, error)
	Create(ctx context.Context, jar ledger.TipJar) error
	// Update writes the mutable fields: active flag, encrypted total and
	// tip count.
	Update(ctx context.Context, jar ledger.TipJar) error
}
