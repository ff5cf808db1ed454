package allowances

import (
	"context"

	"github.com/dmitrijs2005/ghosttips/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) (map[string]uint64, error) {
	query := `SELECT owner, amount FROM allowances`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, dbx.Wrap(err)
	}
	defer rows.Close()

	out := make(map[string]uint64)
	for rows.Next() {
		var (
			owner  string
			amount uint64
		)
		if err := rows.Scan(&owner, &amount); err != nil {
			return nil, dbx.Wrap(err)
		}
		out[owner] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.Wrap(err)
	}

	return out, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, owner string, amount uint64) error {
	query :=
		`INSERT INTO allowances (owner, amount)
		 VALUES ($1, $2)
		 ON CONFLICT (owner) DO UPDATE SET amount = EXCLUDED.amount
		 `

	_, err := r.db.ExecContext(ctx, query, owner, amount)
	return dbx.Wrap(err)
}
