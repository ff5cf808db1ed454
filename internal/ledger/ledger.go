package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/ghosttips/internal/common"
	"github.com/dmitrijs2005/ghosttips/internal/fhe"
	"github.com/dmitrijs2005/ghosttips/internal/logging"
)

const maxAccountLength = 128

// Config holds the ledger's immutable settings.
type Config struct {
	// Rate is the number of tokens per unit of base currency.
	Rate   uint64
	Limits Limits
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Ledger owns all ledger state and serialises every mutation.
type Ledger struct {
	mu sync.RWMutex

	provider fhe.Provider
	store    Store
	notifier Notifier
	logger   logging.Logger
	limits   Limits
	now      func() time.Time

	exchange   Exchange
	balances   map[string]fhe.Value
	allowances map[string]uint64
	jars       []TipJar
	owned      map[string][]uint64
	tips       map[uint64][]Tip

	// halted is set once the reserve invariant is found broken.
	halted bool
}

// New restores a Ledger from store. On a fresh store the configured rate is
// persisted; on an existing one it must match the stored rate.
func New(ctx context.Context, cfg Config, provider fhe.Provider, store Store, notifier Notifier, logger logging.Logger) (*Ledger, error) {
	if cfg.Rate == 0 {
		return nil, fmt.Errorf("%w: exchange rate must be positive", common.ErrorInvalidInput)
	}
	if cfg.Limits == (Limits{}) {
		cfg.Limits = DefaultLimits()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	snap, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger state: %w", err)
	}

	l := &Ledger{
		provider:   provider,
		store:      store,
		notifier:   notifier,
		logger:     logger.With("module", "ledger"),
		limits:     cfg.Limits,
		now:        cfg.Clock,
		exchange:   snap.Exchange,
		balances:   make(map[string]fhe.Value, len(snap.Balances)),
		allowances: make(map[string]uint64, len(snap.Allowances)),
		owned:      make(map[string][]uint64),
		tips:       make(map[uint64][]Tip, len(snap.Tips)),
	}

	for k, v := range snap.Balances {
		l.balances[k] = v
	}
	for k, v := range snap.Allowances {
		l.allowances[k] = v
	}
	for i, jar := range snap.Jars {
		if jar.ID != uint64(i+1) {
			return nil, fmt.Errorf("load ledger state: tip jar ids are not contiguous at %d", jar.ID)
		}
		l.jars = append(l.jars, jar)
		l.owned[jar.Owner] = append(l.owned[jar.Owner], jar.ID)
	}
	for id, tips := range snap.Tips {
		l.tips[id] = append([]Tip(nil), tips...)
	}

	switch {
	case l.exchange.Rate == 0:
		ex := Exchange{Rate: cfg.Rate}
		if err := store.Commit(ctx, &Changeset{Exchange: &ex}); err != nil {
			return nil, fmt.Errorf("persist exchange rate: %w", err)
		}
		l.exchange = ex
	case l.exchange.Rate != cfg.Rate:
		return nil, fmt.Errorf("exchange rate is immutable: stored %d, configured %d", l.exchange.Rate, cfg.Rate)
	}

	if !l.exchange.Balanced() {
		return nil, fmt.Errorf("load ledger state: %w: reserve=%d rate=%d supply=%d",
			common.ErrorReserveInvariant, l.exchange.Reserve, l.exchange.Rate, l.exchange.Supply)
	}

	return l, nil
}

// mutate runs build under the writer lock, commits the resulting changeset
// and applies it. Events are delivered after the lock is released.
func (l *Ledger) mutate(ctx context.Context, op string, build func(cs *Changeset) error) error {
	l.mu.Lock()

	if l.halted {
		l.mu.Unlock()
		return common.ErrorReserveInvariant
	}

	cs := newChangeset()
	err := build(cs)
	if err == nil {
		err = l.commitLocked(ctx, op, cs)
	}

	l.mu.Unlock()

	if err != nil {
		return err
	}

	for _, e := range cs.events {
		if nerr := l.notifier.Notify(ctx, e); nerr != nil {
			l.logger.Warn(ctx, "event delivery failed", "op", op, "event", string(e.Type), "error", nerr.Error())
		}
	}
	return nil
}

func (l *Ledger) commitLocked(ctx context.Context, op string, cs *Changeset) error {
	if cs.Exchange != nil && !cs.Exchange.Balanced() {
		return l.haltLocked(ctx, op, *cs.Exchange)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if cs.Empty() {
		return nil
	}

	if err := l.store.Commit(ctx, cs); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	l.apply(cs)
	return nil
}

// haltLocked stops all further mutations. It is only reached when the
// conservation law between reserve and supply is broken.
func (l *Ledger) haltLocked(ctx context.Context, op string, ex Exchange) error {
	l.halted = true
	l.logger.Error(ctx, "reserve invariant violated, refusing further mutations",
		"op", op, "reserve", ex.Reserve, "rate", ex.Rate, "supply", ex.Supply)
	return common.ErrorReserveInvariant
}

func (l *Ledger) apply(cs *Changeset) {
	if cs.Exchange != nil {
		l.exchange = *cs.Exchange
	}
	for k, v := range cs.Balances {
		l.balances[k] = v
	}
	for k, v := range cs.Allowances {
		l.allowances[k] = v
	}
	if cs.NewJar != nil {
		l.jars = append(l.jars, *cs.NewJar)
		l.owned[cs.NewJar.Owner] = append(l.owned[cs.NewJar.Owner], cs.NewJar.ID)
	}
	for id, jar := range cs.Jars {
		l.jars[id-1] = jar
	}
	for _, t := range cs.Tips {
		l.tips[t.JarID] = append(l.tips[t.JarID], t)
	}
}

// Halted reports whether mutations are refused after an invariant violation.
func (l *Ledger) Halted() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.halted
}

// Exchange returns the public exchange state.
func (l *Ledger) Exchange() Exchange {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.exchange
}

// covers asks the provider whether have >= want. Provider failures are
// reported as errors, never as a false comparison.
func (l *Ledger) covers(ctx context.Context, have, want fhe.Value) (bool, error) {
	ok, err := l.provider.GreaterOrEqual(ctx, have, want)
	if err != nil {
		return false, fmt.Errorf("encrypted comparison: %w", err)
	}
	return ok, nil
}

// providerErr wraps provider failures so that authorization errors keep
// their kind and everything else is reported as internal.
func providerErr(err error) error {
	if errors.Is(err, common.ErrorUnauthorized) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", common.ErrorInternal, err)
}

func normalizeAccount(account string) (string, error) {
	a := strings.ToLower(strings.TrimSpace(account))
	if a == "" {
		return "", fmt.Errorf("%w: account is empty", common.ErrorInvalidInput)
	}
	if len(a) > maxAccountLength {
		return "", fmt.Errorf("%w: account is too long", common.ErrorInvalidInput)
	}
	return a, nil
}

func checkText(field, value string, limit int, required bool) error {
	n := utf8.RuneCountInString(value)
	if required && n == 0 {
		return fmt.Errorf("%w: %s is empty", common.ErrorInvalidInput, field)
	}
	if !utf8.ValidString(value) {
		return fmt.Errorf("%w: %s is not valid utf-8", common.ErrorInvalidInput, field)
	}
	if n > limit {
		return fmt.Errorf("%w: %s exceeds %d characters", common.ErrorInvalidInput, field, limit)
	}
	return nil
}

func positive(field string, amount uint64) error {
	if amount == 0 {
		return fmt.Errorf("%w: %s must be positive", common.ErrorInvalidInput, field)
	}
	return nil
}
