package fhe

import (
	"context"
	"crypto/cipher"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/ghosttips/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// SealedProvider keeps amounts inside authenticated ciphertexts. The viewer
// list is bound as associated data, so a handle cannot be re-attributed to
// another viewer without failing authentication.
//
// Arithmetic is done by opening both operands inside the provider, which
// stands in for a homomorphic service that never hands plaintext to the
// ledger.
type SealedProvider struct {
	aead cipher.AEAD
}

// DeriveKey derives a 32-byte sealing key from a secret and a salt using
// argon2id.
func DeriveKey(secret, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, chacha20poly1305.KeySize)
}

// NewSealedProvider builds a provider from a raw 32-byte key.
func NewSealedProvider(key []byte) (*SealedProvider, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("sealed provider: %w", err)
	}
	return &SealedProvider{aead: aead}, nil
}

// NewSealedProviderFromSecret derives the key from secret and salt and wipes
// the intermediate key material once the cipher is initialized.
func NewSealedProviderFromSecret(secret, salt string) (*SealedProvider, error) {
	key := DeriveKey([]byte(secret), []byte(salt))
	defer common.WipeByteArray(key)
	return NewSealedProvider(key)
}

func associatedData(viewers []string) []byte {
	return []byte("ghosttips/v1|" + strings.Join(viewers, ","))
}

func (p *SealedProvider) seal(amount uint64, viewers []string) Value {
	vs := normalizeViewers(viewers)

	plain := make([]byte, 8)
	binary.BigEndian.PutUint64(plain, amount)

	nonce := common.GenerateRandByteArray(p.aead.NonceSize())
	sealed := p.aead.Seal(nonce, nonce, plain, associatedData(vs))

	return Value{Handle: base64.RawURLEncoding.EncodeToString(sealed), Viewers: vs}
}

func (p *SealedProvider) open(v Value) (uint64, error) {
	raw, err := base64.RawURLEncoding.DecodeString(v.Handle)
	if err != nil || len(raw) < p.aead.NonceSize()+p.aead.Overhead() {
		return 0, ErrMalformed
	}

	nonce, ct := raw[:p.aead.NonceSize()], raw[p.aead.NonceSize():]
	plain, err := p.aead.Open(nil, nonce, ct, associatedData(normalizeViewers(v.Viewers)))
	if err != nil || len(plain) != 8 {
		return 0, ErrMalformed
	}
	return binary.BigEndian.Uint64(plain), nil
}

func (p *SealedProvider) pair(ctx context.Context, a, b Value) (uint64, uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	x, err := p.open(a)
	if err != nil {
		return 0, 0, err
	}
	y, err := p.open(b)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func (p *SealedProvider) EncryptZero(ctx context.Context, viewers ...string) (Value, error) {
	return p.Encrypt(ctx, 0, viewers...)
}

func (p *SealedProvider) Encrypt(ctx context.Context, amount uint64, viewers ...string) (Value, error) {
	if err := ctx.Err(); err != nil {
		return Value{}, err
	}
	return p.seal(amount, viewers), nil
}

func (p *SealedProvider) Add(ctx context.Context, a, b Value, viewers ...string) (Value, error) {
	x, y, err := p.pair(ctx, a, b)
	if err != nil {
		return Value{}, err
	}
	s, err := addChecked(x, y)
	if err != nil {
		return Value{}, err
	}
	return p.seal(s, viewers), nil
}

func (p *SealedProvider) Sub(ctx context.Context, a, b Value, viewers ...string) (Value, error) {
	x, y, err := p.pair(ctx, a, b)
	if err != nil {
		return Value{}, err
	}
	d, err := subChecked(x, y)
	if err != nil {
		return Value{}, err
	}
	return p.seal(d, viewers), nil
}

func (p *SealedProvider) GreaterOrEqual(ctx context.Context, a, b Value) (bool, error) {
	x, y, err := p.pair(ctx, a, b)
	if err != nil {
		return false, err
	}
	return x >= y, nil
}

func (p *SealedProvider) Decrypt(ctx context.Context, v Value, viewer string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if !v.CanView(viewer) {
		return 0, ErrNotViewer
	}
	return p.open(v)
}
