// Package ledger implements the GhostTips token economy and tipping protocol.
//
// A single Ledger owns all state: the exchange reserve and token supply,
// encrypted balances, allowances, tip jars and received tips. Mutating
// operations are serialised by one writer lock. Each one builds a Changeset
// against the current state, commits it to the Store, and only then applies
// it to memory, so a failed precondition or a failed commit leaves nothing
// behind.
//
// Amounts that belong to a participant (balances, jar totals, tip amounts)
// exist only as fhe.Value ciphertexts. The ledger learns nothing about them
// beyond the booleans returned by fhe.Provider.GreaterOrEqual.
package ledger
