package tips

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

func (r *PostgresRepository) List(ctx context.Context) (map[uint64][]ledger.Tip, error) {
	query :=
		`SELECT jar_id, seq, sender, encrypted_amount, message, created_at
		 FROM tips
		 ORDER BY jar_id, seq
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, dbx.Wrap(err)
	}
	defer rows.Close()

	out := make(map[uint64][]ledger.Tip)
	for rows.Next() {
		var tip ledger.Tip
		err := rows.Scan(&tip.JarID, &tip.Seq, &tip.Sender, &tip.EncryptedAmount, &tip.Message, &tip.CreatedAt)
		if err != nil {
			return nil, dbx.Wrap(err)
		}
		tip.CreatedAt = tip.CreatedAt.UTC()
		out[tip.JarID] = append(out[tip.JarID], tip)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.Wrap(err)
	}

	return out, nil
}

func (r *PostgresRepository) Create(ctx context.Context, tip ledger.Tip) error {
	query :=
		`INSERT INTO tips (jar_id, seq, sender, encrypted_amount, message, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 `

	_, err := r.db.ExecContext(ctx, query, tip.JarID, tip.Seq, tip.Sender, tip.EncryptedAmount, tip.Message, tip.CreatedAt)
	return dbx.Wrap(err)
}
