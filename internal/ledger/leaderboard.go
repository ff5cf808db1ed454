package ledger

import (
	"cmp"
	"slices"
)

// Rank orders jars by tip count, highest first, breaking ties by the lower
// (earlier) id, and returns the first n as standings. It reads only public
// fields.
func Rank(jars []TipJar, n int) []Standing {
	if n <= 0 || len(jars) == 0 {
		return []Standing{}
	}

	order := make([]int, len(jars))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		if c := cmp.Compare(jars[b].TipCount, jars[a].TipCount); c != 0 {
			return c
		}
		return cmp.Compare(jars[a].ID, jars[b].ID)
	})

	n = min(n, len(order))
	out := make([]Standing, 0, n)
	for i, idx := range order[:n] {
		j := jars[idx]
		out = append(out, Standing{
			Rank:     i + 1,
			JarID:    j.ID,
			Name:     j.Name,
			Category: j.Category,
			Owner:    j.Owner,
			TipCount: j.TipCount,
		})
	}
	return out
}

// TopJars returns the n most tipped jars.
func (l *Ledger) TopJars(n int) []Standing {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Rank(l.jars, n)
}
