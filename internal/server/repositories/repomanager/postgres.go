// Package repomanager provides the PostgreSQL RepositoryManager, wiring the
// ledger repositories together with goose migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/ghosttips/internal/dbx"
	"github.com/dmitrijs2005/ghosttips/internal/server/migrations"
	"github.com/dmitrijs2005/ghosttips/internal/server/repositories/allowances"
	"github.com/dmitrijs2005/ghosttips/internal/server/repositories/balances"
	"github.com/dmitrijs2005/ghosttips/internal/server/repositories/exchangestate"
	"github.com/dmitrijs2005/ghosttips/internal/server/repositories/tipjars"
	"github.com/dmitrijs2005/ghosttips/internal/server/repositories/tips"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Exchange(db dbx.DBTX) exchangestate.Repository {
	return exchangestate.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Balances(db dbx.DBTX) balances.Repository {
	return balances.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Allowances(db dbx.DBTX) allowances.Repository {
	return allowances.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) TipJars(db dbx.DBTX) tipjars.Repository {
	return tipjars.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Tips(db dbx.DBTX) tips.Repository {
	return tips.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}
