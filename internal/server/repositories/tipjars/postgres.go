package tipjars

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/ghosttips/internal/common"
	"github.com/dmitrijs2005/ghosttips/internal/dbx"
	"github.com/dmitrijs2005/ghosttips/internal/ledger"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]ledger.TipJar, error) {
	query :=
		`SELECT id, owner, name, description, category, active, encrypted_total, tip_count, created_at
		 FROM tip_jars
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, dbx.Wrap(err)
	}
	defer rows.Close()

	var jars []ledger.TipJar
	for rows.Next() {
		var (
			j        ledger.TipJar
			category string
		)
		err := rows.Scan(&j.ID, &j.Owner, &j.Name, &j.Description, &category, &j.Active,
			&j.EncryptedTotal, &j.TipCount, &j.CreatedAt)
		if err != nil {
			return nil, dbx.Wrap(err)
		}
		j.Category = ledger.Category(category)
		j.CreatedAt = j.CreatedAt.UTC()
		jars = append(jars, j)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.Wrap(err)
	}

	return jars, nil
}

func (r *PostgresRepository) Create(ctx context.Context, jar ledger.TipJar) error {
	query :=
		`INSERT INTO tip_jars (id, owner, name, description, category, active, encrypted_total, tip_count, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 `

	_, err := r.db.ExecContext(ctx, query, jar.ID, jar.Owner, jar.Name, jar.Description,
		string(jar.Category), jar.Active, jar.EncryptedTotal, jar.TipCount, jar.CreatedAt)
	return dbx.Wrap(err)
}

func (r *PostgresRepository) Update(ctx context.Context, jar ledger.TipJar) error {
	query :=
		`UPDATE tip_jars
		 SET active = $2, encrypted_total = $3, tip_count = $4
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, jar.ID, jar.Active, jar.EncryptedTotal, jar.TipCount)
	if err != nil {
		return dbx.Wrap(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return dbx.Wrap(err)
	}
	if n == 0 {
		return fmt.Errorf("tip jar %d: %w", jar.ID, common.ErrorNotFound)
	}

	return nil
}
