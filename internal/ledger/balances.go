package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/ghosttips/internal/common"
	"github.com/dmitrijs2005/ghosttips/internal/fhe"
)

// balanceIn returns the balance of account as cs would leave it.
func (l *Ledger) balanceIn(cs *Changeset, account string) (fhe.Value, bool) {
	if v, ok := cs.Balances[account]; ok {
		return v, true
	}
	v, ok := l.balances[account]
	return v, ok
}

// hasBalance reports whether account holds at least amount.
func (l *Ledger) hasBalance(ctx context.Context, cs *Changeset, account string, amount fhe.Value) (bool, error) {
	cur, ok := l.balanceIn(cs, account)
	if !ok {
		return false, nil
	}
	return l.covers(ctx, cur, amount)
}

// credit adds amount to the balance of account, creating the balance as an
// encryption of zero first if needed.
func (l *Ledger) credit(ctx context.Context, cs *Changeset, account string, amount fhe.Value) error {
	cur, ok := l.balanceIn(cs, account)
	if !ok {
		zero, err := l.provider.EncryptZero(ctx, account)
		if err != nil {
			return providerErr(err)
		}
		cur = zero
	}

	next, err := l.provider.Add(ctx, cur, amount, account)
	if err != nil {
		return providerErr(err)
	}
	cs.Balances[account] = next
	return nil
}

// debit subtracts amount from the balance of account. Callers must have
// checked sufficiency with hasBalance; an underflow here still fails closed.
func (l *Ledger) debit(ctx context.Context, cs *Changeset, account string, amount fhe.Value) error {
	cur, ok := l.balanceIn(cs, account)
	if !ok {
		return common.ErrorInsufficientBalance
	}

	next, err := l.provider.Sub(ctx, cur, amount, account)
	if err != nil {
		if errors.Is(err, fhe.ErrUnderflow) {
			return common.ErrorInsufficientBalance
		}
		return providerErr(err)
	}
	cs.Balances[account] = next
	return nil
}

// EncryptedBalance returns the raw ciphertext of the account's balance.
// Anyone may read it; only the account can decrypt it.
func (l *Ledger) EncryptedBalance(account string) (fhe.Value, error) {
	account, err := normalizeAccount(account)
	if err != nil {
		return fhe.Value{}, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	v, ok := l.balances[account]
	if !ok {
		return fhe.Value{}, fmt.Errorf("balance of %s: %w", account, common.ErrorNotFound)
	}
	return v, nil
}

// DecryptBalance reveals the caller's own balance. Accounts that were never
// credited hold zero.
func (l *Ledger) DecryptBalance(ctx context.Context, caller string) (uint64, error) {
	caller, err := normalizeAccount(caller)
	if err != nil {
		return 0, err
	}

	l.mu.RLock()
	v, ok := l.balances[caller]
	l.mu.RUnlock()

	if !ok {
		return 0, nil
	}

	amount, err := l.provider.Decrypt(ctx, v, caller)
	if err != nil {
		return 0, providerErr(err)
	}
	return amount, nil
}

// Reveal decrypts v for caller. The provider refuses callers outside the
// value's viewer list.
func (l *Ledger) Reveal(ctx context.Context, caller string, v fhe.Value) (uint64, error) {
	caller, err := normalizeAccount(caller)
	if err != nil {
		return 0, err
	}

	amount, err := l.provider.Decrypt(ctx, v, caller)
	if err != nil {
		return 0, providerErr(err)
	}
	return amount, nil
}
