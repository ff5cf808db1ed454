package ledger

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/ghosttips/internal/common"
)

// CreateTipJar registers a new jar owned by owner and returns its id.
// Ids start at 1 and grow by one per jar.
func (l *Ledger) CreateTipJar(ctx context.Context, owner string, spec JarSpec) (uint64, error) {
	owner, err := normalizeAccount(owner)
	if err != nil {
		return 0, err
	}

	name := strings.TrimSpace(spec.Name)
	description := strings.TrimSpace(spec.Description)
	if err := checkText("name", name, l.limits.MaxNameLength, true); err != nil {
		return 0, err
	}
	if err := checkText("description", description, l.limits.MaxDescriptionLength, false); err != nil {
		return 0, err
	}
	category, err := ParseCategory(spec.Category)
	if err != nil {
		return 0, err
	}

	var id uint64
	err = l.mutate(ctx, "create_tip_jar", func(cs *Changeset) error {
		total, err := l.provider.EncryptZero(ctx, owner)
		if err != nil {
			return providerErr(err)
		}

		jar := TipJar{
			ID:             uint64(len(l.jars)) + 1,
			Owner:          owner,
			Name:           name,
			Description:    description,
			Category:       category,
			Active:         true,
			EncryptedTotal: total,
			CreatedAt:      l.now().UTC(),
		}
		cs.NewJar = &jar
		cs.events = append(cs.events, Event{Type: EventJarCreated, JarID: jar.ID, Owner: owner})

		id = jar.ID
		return nil
	})
	if err != nil {
		return 0, err
	}

	l.logger.Info(ctx, "tip jar created", "jar_id", id, "owner", owner)
	return id, nil
}

// SetTipJarActive opens or closes a jar for new tips. Only the owner may
// do this. Closed jars keep their total and can still be withdrawn from.
func (l *Ledger) SetTipJarActive(ctx context.Context, caller string, jarID uint64, active bool) error {
	caller, err := normalizeAccount(caller)
	if err != nil {
		return err
	}

	return l.mutate(ctx, "set_tip_jar_active", func(cs *Changeset) error {
		jar, err := l.jarLocked(jarID)
		if err != nil {
			return err
		}
		if jar.Owner != caller {
			return fmt.Errorf("tip jar %d: %w", jarID, common.ErrorUnauthorized)
		}
		if jar.Active == active {
			return nil
		}

		jar.Active = active
		cs.Jars[jar.ID] = jar
		cs.events = append(cs.events, Event{Type: EventJarStatus, JarID: jar.ID, Active: &active})
		return nil
	})
}

// jarLocked returns a copy of the jar. Callers hold l.mu.
func (l *Ledger) jarLocked(jarID uint64) (TipJar, error) {
	if jarID == 0 || jarID > uint64(len(l.jars)) {
		return TipJar{}, fmt.Errorf("tip jar %d: %w", jarID, common.ErrorNotFound)
	}
	return l.jars[jarID-1], nil
}

// TipJar returns the jar with the given id.
func (l *Ledger) TipJar(jarID uint64) (TipJar, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.jarLocked(jarID)
}

// TipJarCount returns the number of jars ever created.
func (l *Ledger) TipJarCount() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return uint64(len(l.jars))
}

// ListTipJars returns up to limit jars in id order starting after offset
// jars. A non-positive limit returns nothing.
func (l *Ledger) ListTipJars(offset, limit int) []TipJar {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || offset >= len(l.jars) {
		return []TipJar{}
	}
	end := min(offset+limit, len(l.jars))
	return slices.Clone(l.jars[offset:end])
}

// JarsOwnedBy returns the ids of all jars owned by account, ascending.
func (l *Ledger) JarsOwnedBy(account string) ([]uint64, error) {
	account, err := normalizeAccount(account)
	if err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := slices.Clone(l.owned[account])
	if ids == nil {
		ids = []uint64{}
	}
	return ids, nil
}
