// Package fhe describes the encrypted-value capability the ledger builds on.
//
// A Value is an opaque ciphertext handle together with the list of accounts
// allowed to decrypt it. Values are immutable: every homomorphic operation
// returns a new Value with its own viewer list. Magnitudes are never
// exposed, except through Decrypt for a listed viewer and through the single
// boolean returned by GreaterOrEqual.
//
// Two providers are available:
//
//   - MemoryProvider keeps plaintexts in process memory behind random
//     handles. It is meant for tests and local development.
//   - SealedProvider produces self-contained XChaCha20-Poly1305 ciphertexts
//     bound to their viewer list, so handles can be persisted and shared.
package fhe
