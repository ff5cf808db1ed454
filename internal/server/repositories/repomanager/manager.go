package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/ghosttips/internal/dbx"
	"github.com/dmitrijs2005/ghosttips/internal/server/repositories/allowances"
	"github.com/dmitrijs2005/ghosttips/internal/server/repositories/balances"
	"github.com/dmitrijs2005/ghosttips/internal/server/repositories/exchangestate"
	"github.com/dmitrijs2005/ghosttips/internal/server/repositories/tipjars"
	"github.com/dmitrijs2005/ghosttips/internal/server/repositories/tips"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code
// runs against a pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Exchange(db dbx.DBTX) exchangestate.Repository
	Balances(db dbx.DBTX) balances.Repository
	Allowances(db dbx.DBTX) allowances.Repository
	TipJars(db dbx.DBTX) tipjars.Repository
	Tips(db dbx.DBTX) tips.Repository
}
