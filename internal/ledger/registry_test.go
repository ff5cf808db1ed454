package ledger

import (
	"context"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/ghosttips/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTipJar_Fields(t *testing.T) {
	l, p, _ := newTestLedger(t)
	ctx := context.Background()

	id, err := l.CreateTipJar(ctx, alice, JarSpec{Name: "  Coffee fund ", Description: "beans", Category: "Developer"})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	jar, err := l.TipJar(id)
	require.NoError(t, err)
	assert.Equal(t, alice, jar.Owner)
	assert.Equal(t, "Coffee fund", jar.Name)
	assert.Equal(t, "beans", jar.Description)
	assert.Equal(t, CategoryDeveloper, jar.Category)
	assert.True(t, jar.Active)
	assert.Zero(t, jar.TipCount)
	assert.Equal(t, fixedNow, jar.CreatedAt)

	total, err := p.Decrypt(ctx, jar.EncryptedTotal, alice)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestCreateTipJar_DefaultCategory(t *testing.T) {
	l, _, _ := newTestLedger(t)
	id := mustJar(t, l, alice, "jar")
	jar, err := l.TipJar(id)
	require.NoError(t, err)
	assert.Equal(t, CategoryOther, jar.Category)
}

func TestCreateTipJar_Validation(t *testing.T) {
	l, _, _ := newTestLedger(t)
	ctx := context.Background()

	tests := []struct {
		name string
		spec JarSpec
	}{
		{"empty name", JarSpec{Name: ""}},
		{"blank name", JarSpec{Name: "   "}},
		{"long name", JarSpec{Name: strings.Repeat("x", 65)}},
		{"long description", JarSpec{Name: "ok", Description: strings.Repeat("d", 281)}},
		{"bad category", JarSpec{Name: "ok", Category: "gambling"}},
		{"invalid utf8", JarSpec{Name: "\xff\xfe"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.CreateTipJar(ctx, alice, tt.spec)
			assert.ErrorIs(t, err, common.ErrorInvalidInput)
		})
	}

	assert.Zero(t, l.TipJarCount())

	_, err := l.CreateTipJar(ctx, alice, JarSpec{Name: strings.Repeat("é", 64)})
	assert.NoError(t, err, "limit is counted in characters")
}

func TestCreateTipJar_SequentialIDsUnderConcurrency(t *testing.T) {
	l, _, _ := newTestLedger(t)
	mustJar(t, l, alice, "first")

	const n = 50
	ids := make([]uint64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := l.CreateTipJar(context.Background(), bob, JarSpec{Name: "jar"})
			if err == nil {
				ids[i] = id
			}
		}(i)
	}
	wg.Wait()

	slices.Sort(ids)
	for i, id := range ids {
		assert.Equal(t, uint64(i+2), id, "ids must be contiguous from prior max + 1")
	}
	assert.Equal(t, uint64(n+1), l.TipJarCount())
}

func TestTipJar_NotFound(t *testing.T) {
	l, _, _ := newTestLedger(t)
	mustJar(t, l, alice, "one")

	_, err := l.TipJar(0)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = l.TipJar(2)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestJarsOwnedBy(t *testing.T) {
	l, _, _ := newTestLedger(t)
	mustJar(t, l, alice, "a1")
	mustJar(t, l, bob, "b1")
	mustJar(t, l, alice, "a2")

	ids, err := l.JarsOwnedBy("0xALICE")
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{1, 3}, ids)

	ids, err = l.JarsOwnedBy(carol)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.NotNil(t, ids)
}

func TestListTipJars_Paging(t *testing.T) {
	l, _, _ := newTestLedger(t)
	for _, n := range []string{"a", "b", "c", "d", "e"} {
		mustJar(t, l, alice, n)
	}

	page := l.ListTipJars(1, 2)
	require.Len(t, page, 2)
	assert.Equal(t, uint64(2), page[0].ID)
	assert.Equal(t, uint64(3), page[1].ID)

	assert.Len(t, l.ListTipJars(4, 10), 1)
	assert.Empty(t, l.ListTipJars(5, 10))
	assert.Empty(t, l.ListTipJars(0, 0))
	assert.Len(t, l.ListTipJars(-3, 2), 2)
}

func TestSetTipJarActive(t *testing.T) {
	l, _, _ := newTestLedger(t)
	ctx := context.Background()
	id := mustJar(t, l, alice, "jar")

	err := l.SetTipJarActive(ctx, bob, id, false)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	err = l.SetTipJarActive(ctx, alice, 99, false)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, l.SetTipJarActive(ctx, alice, id, false))
	jar, err := l.TipJar(id)
	require.NoError(t, err)
	assert.False(t, jar.Active)

	require.NoError(t, l.SetTipJarActive(ctx, alice, id, false), "repeating the same state is a no-op")

	mustDeposit(t, l, bob, 1)
	require.NoError(t, l.Approve(ctx, bob, 100))
	_, err = l.SendTip(ctx, bob, id, 10, "")
	assert.ErrorIs(t, err, common.ErrorJarInactive)

	require.NoError(t, l.SetTipJarActive(ctx, alice, id, true))
	_, err = l.SendTip(ctx, bob, id, 10, "")
	assert.NoError(t, err)
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" CHARITY ")
	require.NoError(t, err)
	assert.Equal(t, CategoryCharity, c)

	_, err = ParseCategory("nope")
	assert.ErrorIs(t, err, common.ErrorInvalidInput)
}
