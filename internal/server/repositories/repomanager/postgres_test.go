package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/ghosttips/internal/server/repositories/allowances"
	"github.com/dmitrijs2005/ghosttips/internal/server/repositories/balances"
	"github.com/dmitrijs2005/ghosttips/internal/server/repositories/exchangestate"
	"github.com/dmitrijs2005/ghosttips/internal/server/repositories/tipjars"
	"github.com/dmitrijs2005/ghosttips/internal/server/repositories/tips"
	"github.com/pressly/goose/v3"
)

func newDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db := newDB(t)
	m := NewPostgresRepositoryManager()

	if _, ok := m.Exchange(db).(*exchangestate.PostgresRepository); !ok {
		t.Fatal("Exchange() is not the postgres repository")
	}
	if _, ok := m.Balances(db).(*balances.PostgresRepository); !ok {
		t.Fatal("Balances() is not the postgres repository")
	}
	if _, ok := m.Allowances(db).(*allowances.PostgresRepository); !ok {
		t.Fatal("Allowances() is not the postgres repository")
	}
	if _, ok := m.TipJars(db).(*tipjars.PostgresRepository); !ok {
		t.Fatal("TipJars() is not the postgres repository")
	}
	if _, ok := m.Tips(db).(*tips.PostgresRepository); !ok {
		t.Fatal("Tips() is not the postgres repository")
	}
}

func TestRunMigrations_Success(t *testing.T) {
	db := newDB(t)

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		if len(opts) != 0 {
			return errors.New("unexpected opts")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	if err := NewPostgresRepositoryManager().RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}
}

func TestRunMigrations_Error(t *testing.T) {
	db := newDB(t)

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	err := NewPostgresRepositoryManager().RunMigrations(context.Background(), db)
	if err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	db := newDB(t)

	var seen []string
	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		found, err := goose.CollectMigrations(dir, 0, goose.MaxVersion)
		if err != nil {
			return err
		}
		for _, m := range found {
			seen = append(seen, m.Source)
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	if err := NewPostgresRepositoryManager().RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}
	if len(seen) == 0 {
		t.Fatal("no embedded migrations found")
	}
}
