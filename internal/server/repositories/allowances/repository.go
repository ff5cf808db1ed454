package allowances

import "context"

// Repository stores the amount the tipping protocol may spend per owner.
type Repository interface {
	List(ctx context.Context) (map[string]uint64, error)
	Upsert(ctx context.Context, owner string, amount uint64) error
}
