package ledger

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/dmitrijs2005/ghosttips/internal/fhe"
)

// Snapshot is the full persisted state handed to New on startup.
// Jars are ordered by ID; Tips are keyed by jar and ordered by Seq.
type Snapshot struct {
	Exchange   Exchange
	Balances   map[string]fhe.Value
	Allowances map[string]uint64
	Jars       []TipJar
	Tips       map[uint64][]Tip
}

// Changeset is everything one operation writes. Either all of it is
// committed or none of it is.
type Changeset struct {
	Exchange   *Exchange
	Balances   map[string]fhe.Value
	Allowances map[string]uint64
	NewJar     *TipJar
	Jars       map[uint64]TipJar
	Tips       []Tip

	events []Event
}

func newChangeset() *Changeset {
	return &Changeset{
		Balances:   make(map[string]fhe.Value),
		Allowances: make(map[string]uint64),
		Jars:       make(map[uint64]TipJar),
	}
}

// Empty reports whether the changeset writes nothing.
func (c *Changeset) Empty() bool {
	return c.Exchange == nil && c.NewJar == nil && len(c.Balances) == 0 &&
		len(c.Allowances) == 0 && len(c.Jars) == 0 && len(c.Tips) == 0
}

// Store persists ledger state.
type Store interface {
	// Load returns the last committed state. A fresh store returns an
	// empty snapshot with a zero exchange rate.
	Load(ctx context.Context) (*Snapshot, error)
	// Commit durably writes cs as a single atomic unit.
	Commit(ctx context.Context, cs *Changeset) error
}

// MemoryStore keeps committed state in process memory. It survives a
// Ledger restart within the same process, which is enough for local runs
// and tests.
type MemoryStore struct {
	mu   sync.Mutex
	snap Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snap: Snapshot{
		Balances:   make(map[string]fhe.Value),
		Allowances: make(map[string]uint64),
		Tips:       make(map[uint64][]Tip),
	}}
}

func (s *MemoryStore) Load(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := &Snapshot{
		Exchange:   s.snap.Exchange,
		Balances:   maps.Clone(s.snap.Balances),
		Allowances: maps.Clone(s.snap.Allowances),
		Jars:       slices.Clone(s.snap.Jars),
		Tips:       make(map[uint64][]Tip, len(s.snap.Tips)),
	}
	for id, tips := range s.snap.Tips {
		out.Tips[id] = slices.Clone(tips)
	}
	return out, nil
}

func (s *MemoryStore) Commit(ctx context.Context, cs *Changeset) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cs.Exchange != nil {
		s.snap.Exchange = *cs.Exchange
	}
	maps.Copy(s.snap.Balances, cs.Balances)
	maps.Copy(s.snap.Allowances, cs.Allowances)
	if cs.NewJar != nil {
		s.snap.Jars = append(s.snap.Jars, *cs.NewJar)
	}
	for id, jar := range cs.Jars {
		s.snap.Jars[id-1] = jar
	}
	for _, t := range cs.Tips {
		s.snap.Tips[t.JarID] = append(s.snap.Tips[t.JarID], t)
	}
	return nil
}
