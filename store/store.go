// Package store defines the storage port used by the verification engine and
// the wallet verifier to persist anti-abuse facts, together with an in-memory
// implementation for tests and a Redis implementation for production.
package store

import "context"

// Store is a namespaced key-value port. Implementations must be safe for
// concurrent use; serialization of read-modify-write sequences is the
// caller's responsibility (see engine.Engine and wallet.Verifier).
type Store interface {
	// Get returns the value for key and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set writes value under key, overwriting any previous value.
	Set(ctx context.Context, key string, value []byte) error
}

// Key prefixes for the three record namespaces. Prefixes keep the namespaces
// collision-free within a shared store; the remaining key material is
// validated hex, so author-supplied strings cannot alias keys across
// namespaces.
const (
	WalletTimestampPrefix = "wallet_ts:"
	TokenUsagePrefix      = "token_use:"
	TokenBindingPrefix    = "token_bind:"
)
