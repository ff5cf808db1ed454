package ledger

import (
	"context"
	"fmt"
	"math/bits"

	"github.com/dmitrijs2005/ghosttips/internal/common"
)

// Deposit converts baseAmount units of base currency into baseAmount*Rate
// tokens credited to account. It returns the number of tokens minted.
func (l *Ledger) Deposit(ctx context.Context, account string, baseAmount uint64) (uint64, error) {
	account, err := normalizeAccount(account)
	if err != nil {
		return 0, err
	}
	if err := positive("base amount", baseAmount); err != nil {
		return 0, err
	}

	var minted uint64
	err = l.mutate(ctx, "deposit", func(cs *Changeset) error {
		ex := l.exchange

		hi, lo := bits.Mul64(baseAmount, ex.Rate)
		if hi != 0 {
			return fmt.Errorf("%w: deposit overflows token supply", common.ErrorInvalidInput)
		}
		supply, carry := bits.Add64(ex.Supply, lo, 0)
		reserve, carry2 := bits.Add64(ex.Reserve, baseAmount, 0)
		if carry != 0 || carry2 != 0 {
			return fmt.Errorf("%w: deposit overflows token supply", common.ErrorInvalidInput)
		}

		amount, err := l.provider.Encrypt(ctx, lo, account)
		if err != nil {
			return providerErr(err)
		}
		if err := l.credit(ctx, cs, account, amount); err != nil {
			return err
		}

		ex.Supply = supply
		ex.Reserve = reserve
		cs.Exchange = &ex
		minted = lo
		return nil
	})
	if err != nil {
		return 0, err
	}
	return minted, nil
}

// Withdraw burns tokens from account and returns base currency. The payout
// is tokenAmount/Rate rounded down; only payout*Rate tokens are burned and
// the remainder stays in the balance. The balance must cover tokenAmount.
func (l *Ledger) Withdraw(ctx context.Context, account string, tokenAmount uint64) (payout uint64, burned uint64, err error) {
	account, err = normalizeAccount(account)
	if err != nil {
		return 0, 0, err
	}
	if err := positive("token amount", tokenAmount); err != nil {
		return 0, 0, err
	}

	err = l.mutate(ctx, "withdraw", func(cs *Changeset) error {
		ex := l.exchange

		p := tokenAmount / ex.Rate
		if p == 0 {
			return fmt.Errorf("%w: token amount is below the exchange rate of %d", common.ErrorInvalidInput, ex.Rate)
		}
		b := p * ex.Rate

		requested, err := l.provider.Encrypt(ctx, tokenAmount, account)
		if err != nil {
			return providerErr(err)
		}
		ok, err := l.hasBalance(ctx, cs, account, requested)
		if err != nil {
			return providerErr(err)
		}
		if !ok {
			return common.ErrorInsufficientBalance
		}

		burn, err := l.provider.Encrypt(ctx, b, account)
		if err != nil {
			return providerErr(err)
		}
		if err := l.debit(ctx, cs, account, burn); err != nil {
			return err
		}

		if ex.Reserve < p || ex.Supply < b {
			return l.haltLocked(ctx, "withdraw", ex)
		}
		ex.Reserve -= p
		ex.Supply -= b
		cs.Exchange = &ex

		payout, burned = p, b
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return payout, burned, nil
}
