// Package storage adapts the SQL repositories to ledger.Store.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/dmitrijs2005/ghosttips/internal/common"
	"github.com/dmitrijs2005/ghosttips/internal/dbx"
	"github.com/dmitrijs2005/ghosttips/internal/ledger"
	"github.com/dmitrijs2005/ghosttips/internal/server/repositories/repomanager"
)

// PostgresStore persists ledger state with one SQL transaction per
// changeset.
type PostgresStore struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
}

func NewPostgresStore(db *sql.DB, repos repomanager.RepositoryManager) *PostgresStore {
	return &PostgresStore{db: db, repos: repos}
}

func (s *PostgresStore) Load(ctx context.Context) (*ledger.Snapshot, error) {
	snap := &ledger.Snapshot{}

	err := dbx.WithTx(ctx, s.db, &sql.TxOptions{ReadOnly: true, Isolation: sql.LevelRepeatableRead}, func(ctx context.Context, tx dbx.DBTX) error {
		ex, err := s.repos.Exchange(tx).Get(ctx)
		switch {
		case errors.Is(err, common.ErrorNotFound):
			ex = ledger.Exchange{}
		case err != nil:
			return fmt.Errorf("exchange: %w", err)
		}
		snap.Exchange = ex

		if snap.Balances, err = s.repos.Balances(tx).List(ctx); err != nil {
			return fmt.Errorf("balances: %w", err)
		}
		if snap.Allowances, err = s.repos.Allowances(tx).List(ctx); err != nil {
			return fmt.Errorf("allowances: %w", err)
		}
		if snap.Jars, err = s.repos.TipJars(tx).List(ctx); err != nil {
			return fmt.Errorf("tip jars: %w", err)
		}
		if snap.Tips, err = s.repos.Tips(tx).List(ctx); err != nil {
			return fmt.Errorf("tips: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return snap, nil
}

// Commit writes cs atomically. Rows are written in key order so concurrent
// writers cannot deadlock on each other.
func (s *PostgresStore) Commit(ctx context.Context, cs *ledger.Changeset) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if cs.Exchange != nil {
			if err := s.repos.Exchange(tx).Upsert(ctx, *cs.Exchange); err != nil {
				return fmt.Errorf("exchange: %w", err)
			}
		}

		balances := s.repos.Balances(tx)
		for _, account := range slices.Sorted(maps.Keys(cs.Balances)) {
			if err := balances.Upsert(ctx, account, cs.Balances[account]); err != nil {
				return fmt.Errorf("balance of %s: %w", account, err)
			}
		}

		allowances := s.repos.Allowances(tx)
		for _, owner := range slices.Sorted(maps.Keys(cs.Allowances)) {
			if err := allowances.Upsert(ctx, owner, cs.Allowances[owner]); err != nil {
				return fmt.Errorf("allowance of %s: %w", owner, err)
			}
		}

		jars := s.repos.TipJars(tx)
		if cs.NewJar != nil {
			if err := jars.Create(ctx, *cs.NewJar); err != nil {
				return fmt.Errorf("tip jar %d: %w", cs.NewJar.ID, err)
			}
		}
		for _, id := range slices.Sorted(maps.Keys(cs.Jars)) {
			if err := jars.Update(ctx, cs.Jars[id]); err != nil {
				return fmt.Errorf("tip jar %d: %w", id, err)
			}
		}

		tips := s.repos.Tips(tx)
		for _, tip := range cs.Tips {
			if err := tips.Create(ctx, tip); err != nil {
				return fmt.Errorf("tip %d/%d: %w", tip.JarID, tip.Seq, err)
			}
		}

		return nil
	})
}
