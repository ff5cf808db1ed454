package fhe

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type plainEntry struct {
	amount  uint64
	viewers []string
}

// MemoryProvider is a plaintext-backed Provider. Handles are random UUIDs
// and carry no information about the amount.
type MemoryProvider struct {
	mu      sync.RWMutex
	entries map[string]plainEntry
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{entries: make(map[string]plainEntry)}
}

func (p *MemoryProvider) store(amount uint64, viewers []string) Value {
	vs := normalizeViewers(viewers)
	h := uuid.NewString()

	p.mu.Lock()
	p.entries[h] = plainEntry{amount: amount, viewers: vs}
	p.mu.Unlock()

	return Value{Handle: h, Viewers: vs}
}

func (p *MemoryProvider) load(v Value) (uint64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	e, ok := p.entries[v.Handle]
	if !ok {
		return 0, ErrMalformed
	}
	return e.amount, nil
}

func (p *MemoryProvider) EncryptZero(ctx context.Context, viewers ...string) (Value, error) {
	return p.Encrypt(ctx, 0, viewers...)
}

func (p *MemoryProvider) Encrypt(ctx context.Context, amount uint64, viewers ...string) (Value, error) {
	if err := ctx.Err(); err != nil {
		return Value{}, err
	}
	return p.store(amount, viewers), nil
}

func (p *MemoryProvider) Add(ctx context.Context, a, b Value, viewers ...string) (Value, error) {
	x, y, err := p.pair(ctx, a, b)
	if err != nil {
		return Value{}, err
	}
	s, err := addChecked(x, y)
	if err != nil {
		return Value{}, err
	}
	return p.store(s, viewers), nil
}

func (p *MemoryProvider) Sub(ctx context.Context, a, b Value, viewers ...string) (Value, error) {
	x, y, err := p.pair(ctx, a, b)
	if err != nil {
		return Value{}, err
	}
	d, err := subChecked(x, y)
	if err != nil {
		return Value{}, err
	}
	return p.store(d, viewers), nil
}

func (p *MemoryProvider) GreaterOrEqual(ctx context.Context, a, b Value) (bool, error) {
	x, y, err := p.pair(ctx, a, b)
	if err != nil {
		return false, err
	}
	return x >= y, nil
}

func (p *MemoryProvider) Decrypt(ctx context.Context, v Value, viewer string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	p.mu.RLock()
	e, ok := p.entries[v.Handle]
	p.mu.RUnlock()
	if !ok {
		return 0, ErrMalformed
	}

	if !(Value{Viewers: e.viewers}).CanView(viewer) {
		return 0, ErrNotViewer
	}
	return e.amount, nil
}

func (p *MemoryProvider) pair(ctx context.Context, a, b Value) (uint64, uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	x, err := p.load(a)
	if err != nil {
		return 0, 0, err
	}
	y, err := p.load(b)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}
