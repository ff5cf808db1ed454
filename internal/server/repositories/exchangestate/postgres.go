package exchangestate

import (
	"context"

	"github.com/dmitrijs2005/ghosttips/internal/dbx"
	"github.com/dmitrijs2005/ghosttips/internal/ledger"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context) (ledger.Exchange, error) {
	query :=
		`SELECT rate, reserve, supply FROM exchange_state
		 WHERE id = 1
		 `

	var ex ledger.Exchange
	err := r.db.QueryRowContext(ctx, query).Scan(&ex.Rate, &ex.Reserve, &ex.Supply)
	if err != nil {
		return ledger.Exchange{}, dbx.Wrap(err)
	}

	return ex, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, ex ledger.Exchange) error {
	query :=
		`INSERT INTO exchange_state (id, rate, reserve, supply)
		 VALUES (1, $1, $2, $3)
		 ON CONFLICT (id) DO UPDATE
		 SET rate = EXCLUDED.rate, reserve = EXCLUDED.reserve, supply = EXCLUDED.supply
		 `

	_, err := r.db.ExecContext(ctx, query, ex.Rate, ex.Reserve, ex.Supply)
	return dbx.Wrap(err)
}
