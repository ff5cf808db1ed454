package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/ghosttips/internal/fhe"
	"github.com/stretchr/testify/require"
)

const (
	alice = "0xalice"
	bob   = "0xbob"
	carol = "0xcarol"
)

var fixedNow = time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)

func newTestLedger(t *testing.T) (*Ledger, *fhe.MemoryProvider, *MemoryStore) {
	t.Helper()
	p := fhe.NewMemoryProvider()
	s := NewMemoryStore()
	l, err := New(context.Background(), Config{Rate: 1000, Clock: func() time.Time { return fixedNow }}, p, s, nil, nil)
	require.NoError(t, err)
	return l, p, s
}

// view is the observable state touched by a tip.
type view struct {
	allowance uint64
	balance   uint64
	total     uint64
	tipCount  uint64
	tips      int
}

func observe(t *testing.T, l *Ledger, sender string, jarID uint64) view {
	t.Helper()
	ctx := context.Background()

	allowance, err := l.Allowance(sender)
	require.NoError(t, err)
	balance, err := l.DecryptBalance(ctx, sender)
	require.NoError(t, err)

	jar, err := l.TipJar(jarID)
	require.NoError(t, err)
	total, err := l.DecryptJarTotal(ctx, jar.Owner, jarID)
	require.NoError(t, err)
	tips, err := l.ReceivedTips(jar.Owner, jarID)
	require.NoError(t, err)

	return view{allowance: allowance, balance: balance, total: total, tipCount: jar.TipCount, tips: len(tips)}
}

func mustDeposit(t *testing.T, l *Ledger, account string, base uint64) {
	t.Helper()
	_, err := l.Deposit(context.Background(), account, base)
	require.NoError(t, err)
}

func mustJar(t *testing.T, l *Ledger, owner, name string) uint64 {
	t.Helper()
	id, err := l.CreateTipJar(context.Background(), owner, JarSpec{Name: name})
	require.NoError(t, err)
	return id
}
