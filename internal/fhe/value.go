package fhe

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/ghosttips/internal/common"
)

var (
	// ErrNotViewer is returned when Decrypt is asked for by an account that
	// is not in the value's viewer list.
	ErrNotViewer = fmt.Errorf("%w: not an authorized viewer", common.ErrorUnauthorized)

	ErrMalformed = errors.New("malformed ciphertext")
	ErrOverflow  = errors.New("encrypted arithmetic overflow")
	ErrUnderflow = errors.New("encrypted arithmetic underflow")
)

// Value is an opaque ciphertext handle bound to its authorized viewers.
type Value struct {
	Handle  string   `json:"handle"`
	Viewers []string `json:"viewers"`
}

// IsZero reports whether v carries no ciphertext at all.
func (v Value) IsZero() bool {
	return v.Handle == ""
}

// CanView reports whether account is in the viewer list.
func (v Value) CanView(account string) bool {
	return slices.Contains(v.Viewers, strings.ToLower(account))
}

// Provider is the encryption service consumed by the ledger.
type Provider interface {
	// EncryptZero returns a fresh encryption of zero.
	EncryptZero(ctx context.Context, viewers ...string) (Value, error)
	// Encrypt turns a public amount into a ciphertext.
	Encrypt(ctx context.Context, amount uint64, viewers ...string) (Value, error)
	// Add returns a+b.
	Add(ctx context.Context, a, b Value, viewers ...string) (Value, error)
	// Sub returns a-b. Callers check GreaterOrEqual first.
	Sub(ctx context.Context, a, b Value, viewers ...string) (Value, error)
	// GreaterOrEqual reports a >= b without revealing either operand.
	GreaterOrEqual(ctx context.Context, a, b Value) (bool, error)
	// Decrypt reveals v to viewer, if viewer is authorized.
	Decrypt(ctx context.Context, v Value, viewer string) (uint64, error)
}

// normalizeViewers lower-cases, sorts and deduplicates a viewer list.
func normalizeViewers(viewers []string) []string {
	out := make([]string, 0, len(viewers))
	for _, v := range viewers {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func addChecked(a, b uint64) (uint64, error) {
	s := a + b
	if s < a {
		return 0, ErrOverflow
	}
	return s, nil
}

func subChecked(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrUnderflow
	}
	return a - b, nil
}
