package balances

import (
	"context"

	"github.com/dmitrijs2005/ghosttips/internal/dbx"
	"github.com/dmitrijs2005/ghosttips/internal/fhe"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) (map[string]fhe.Value, error) {
	query := `SELECT account, ciphertext FROM balances`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, dbx.Wrap(err)
	}
	defer rows.Close()

	out := make(map[string]fhe.Value)
	for rows.Next() {
		var (
			account string
			v       fhe.Value
		)
		if err := rows.Scan(&account, &v); err != nil {
			return nil, dbx.Wrap(err)
		}
		out[account] = v
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.Wrap(err)
	}

	return out, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, account string, v fhe.Value) error {
	query :=
		`INSERT INTO balances (account, ciphertext)
		 VALUES ($1, $2)
		 ON CONFLICT (account) DO UPDATE SET ciphertext = EXCLUDED.ciphertext
		 `

	_, err := r.db.ExecContext(ctx, query, account, v)
	return dbx.Wrap(err)
}
