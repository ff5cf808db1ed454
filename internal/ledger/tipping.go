package ledger

import (
	"context"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/ghosttips/internal/common"
)

// Approve sets the amount the tipping protocol may spend on behalf of
// owner. The previous allowance is replaced, not increased. Zero revokes.
func (l *Ledger) Approve(ctx context.Context, owner string, amount uint64) error {
	owner, err := normalizeAccount(owner)
	if err != nil {
		return err
	}

	return l.mutate(ctx, "approve", func(cs *Changeset) error {
		cs.Allowances[owner] = amount
		return nil
	})
}

// Allowance returns what the tipping protocol may still spend for owner.
func (l *Ledger) Allowance(owner string) (uint64, error) {
	owner, err := normalizeAccount(owner)
	if err != nil {
		return 0, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.allowances[owner], nil
}

// SendTip moves amount tokens from sender into the jar's encrypted total.
// In one commit it spends the allowance, debits the sender, credits the
// jar, increments the tip count and records the tip for the jar owner.
// It returns the jar's new tip count.
func (l *Ledger) SendTip(ctx context.Context, sender string, jarID uint64, amount uint64, message string) (uint64, error) {
	sender, err := normalizeAccount(sender)
	if err != nil {
		return 0, err
	}
	if err := positive("amount", amount); err != nil {
		return 0, err
	}
	if err := checkText("message", message, l.limits.MaxMessageLength, false); err != nil {
		return 0, err
	}

	var tipCount uint64
	err = l.mutate(ctx, "send_tip", func(cs *Changeset) error {
		jar, err := l.jarLocked(jarID)
		if err != nil {
			return err
		}
		if !jar.Active {
			return fmt.Errorf("tip jar %d: %w", jarID, common.ErrorJarInactive)
		}

		allowance := l.allowances[sender]
		if allowance < amount {
			return common.ErrorInsufficientAllowance
		}

		debit, err := l.provider.Encrypt(ctx, amount, sender)
		if err != nil {
			return providerErr(err)
		}
		ok, err := l.hasBalance(ctx, cs, sender, debit)
		if err != nil {
			return providerErr(err)
		}
		if !ok {
			return common.ErrorInsufficientBalance
		}

		if err := l.debit(ctx, cs, sender, debit); err != nil {
			return err
		}

		received, err := l.provider.Encrypt(ctx, amount, jar.Owner)
		if err != nil {
			return providerErr(err)
		}
		total, err := l.provider.Add(ctx, jar.EncryptedTotal, received, jar.Owner)
		if err != nil {
			return providerErr(err)
		}

		jar.EncryptedTotal = total
		jar.TipCount++

		cs.Allowances[sender] = allowance - amount
		cs.Jars[jar.ID] = jar
		cs.Tips = append(cs.Tips, Tip{
			JarID:           jar.ID,
			Seq:             uint64(len(l.tips[jar.ID])) + 1,
			Sender:          sender,
			EncryptedAmount: received,
			Message:         message,
			CreatedAt:       l.now().UTC(),
		})
		cs.events = append(cs.events, Event{Type: EventTipReceived, JarID: jar.ID, TipCount: jar.TipCount})

		tipCount = jar.TipCount
		return nil
	})
	if err != nil {
		return 0, err
	}
	return tipCount, nil
}

// WithdrawFromTipJar moves amount tokens from the jar's total into the
// owner's personal balance. The tip count is not touched.
func (l *Ledger) WithdrawFromTipJar(ctx context.Context, caller string, jarID uint64, amount uint64) error {
	caller, err := normalizeAccount(caller)
	if err != nil {
		return err
	}
	if err := positive("amount", amount); err != nil {
		return err
	}

	return l.mutate(ctx, "withdraw_from_tip_jar", func(cs *Changeset) error {
		jar, err := l.jarLocked(jarID)
		if err != nil {
			return err
		}
		if jar.Owner != caller {
			return fmt.Errorf("tip jar %d: %w", jarID, common.ErrorUnauthorized)
		}

		want, err := l.provider.Encrypt(ctx, amount, caller)
		if err != nil {
			return providerErr(err)
		}
		ok, err := l.covers(ctx, jar.EncryptedTotal, want)
		if err != nil {
			return providerErr(err)
		}
		if !ok {
			return common.ErrorInsufficientBalance
		}

		total, err := l.provider.Sub(ctx, jar.EncryptedTotal, want, caller)
		if err != nil {
			return providerErr(err)
		}
		if err := l.credit(ctx, cs, caller, want); err != nil {
			return err
		}

		jar.EncryptedTotal = total
		cs.Jars[jar.ID] = jar
		return nil
	})
}

// ReceivedTips returns the tips a jar has received. Only the owner may
// read them.
func (l *Ledger) ReceivedTips(caller string, jarID uint64) ([]Tip, error) {
	caller, err := normalizeAccount(caller)
	if err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	jar, err := l.jarLocked(jarID)
	if err != nil {
		return nil, err
	}
	if jar.Owner != caller {
		return nil, fmt.Errorf("tip jar %d: %w", jarID, common.ErrorUnauthorized)
	}

	tips := slices.Clone(l.tips[jarID])
	if tips == nil {
		tips = []Tip{}
	}
	return tips, nil
}

// DecryptJarTotal reveals the jar's running total to its owner.
func (l *Ledger) DecryptJarTotal(ctx context.Context, caller string, jarID uint64) (uint64, error) {
	caller, err := normalizeAccount(caller)
	if err != nil {
		return 0, err
	}

	l.mu.RLock()
	jar, err := l.jarLocked(jarID)
	l.mu.RUnlock()
	if err != nil {
		return 0, err
	}
	if jar.Owner != caller {
		return 0, fmt.Errorf("tip jar %d: %w", jarID, common.ErrorUnauthorized)
	}

	total, err := l.provider.Decrypt(ctx, jar.EncryptedTotal, caller)
	if err != nil {
		return 0, providerErr(err)
	}
	return total, nil
}
