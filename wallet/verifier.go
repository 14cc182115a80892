package wallet

import (
	"context"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/plebbitlabs/mintgate/chain"
	"github.com/plebbitlabs/mintgate/store"
	"github.com/plebbitlabs/mintgate/types"
)

// evmTickers share one address and signature space, so a wallet declared
// under any of them can stand in for a missing entry of another.
var evmTickers = []string{"eth", "matic", "avax"}

// NameResolver resolves a domain-style wallet identity to a chain address.
type NameResolver interface {
	ResolveName(ctx context.Context, name string) (common.Address, error)
}

// Verifier checks wallet-ownership proofs attached to publications. It must
// outlive individual verifications so its per-wallet lock arena can serialize
// concurrent proofs for the same wallet.
type Verifier struct {
	store store.Store
	locks *store.KeyedMutex
}

// NewVerifier creates a Verifier persisting replay timestamps in s.
func NewVerifier(s store.Store) *Verifier {
	return &Verifier{
		store: s,
		locks: store.NewKeyedMutex(),
	}
}

// Verify runs the wallet-ownership proof for pub under cfg and returns the
// verified wallet address. Domain-style wallet identities are resolved
// through resolver. Failures are the sentinel errors in types.
func (v *Verifier) Verify(ctx context.Context, resolver NameResolver, pub *types.Publication, cfg types.PolicyConfig) (common.Address, error) {
	entry, ticker, ok := walletFor(pub, cfg.ChainTicker)
	if !ok {
		return common.Address{}, errors.Wrapf(types.ErrWalletNotSet, "ticker %q", cfg.ChainTicker)
	}

	var addr common.Address
	if chain.IsDomainName(entry.Address) {
		resolved, err := resolver.ResolveName(ctx, entry.Address)
		if err != nil {
			if types.IsRetryable(err) {
				return common.Address{}, err
			}
			return common.Address{}, errors.Wrapf(types.ErrDomainResolutionMismatch,
				"resolve %q: %v", entry.Address, err)
		}

		signer, err := DeriveSignerAddress(pub.Signature.PublicKey)
		if err != nil {
			return common.Address{}, errors.Wrapf(types.ErrDomainResolutionMismatch,
				"derive signer address: %v", err)
		}
		if resolved != signer {
			return common.Address{}, errors.Wrapf(types.ErrDomainResolutionMismatch,
				"%q resolves to %s, publication signer is %s",
				entry.Address, resolved.Hex(), signer.Hex())
		}
		addr = resolved
	} else {
		if !common.IsHexAddress(entry.Address) {
			return common.Address{}, errors.Wrapf(types.ErrInvalidAddressFormat, "%q", entry.Address)
		}
		addr = common.HexToAddress(entry.Address)
	}

	if entry.Signature == "" || entry.Timestamp == 0 {
		return common.Address{}, types.ErrMissingSignature
	}

	message, err := CanonicalMessage(pub.Author, entry.Timestamp)
	if err != nil {
		return common.Address{}, err
	}
	signer, err := RecoverSigner(message, entry.Signature)
	if err != nil {
		return common.Address{}, err
	}
	if signer != addr {
		return common.Address{}, errors.Wrapf(types.ErrInvalidSignature,
			"signed by %s, want %s", signer.Hex(), addr.Hex())
	}

	if err := v.checkReplay(ctx, ticker, addr, entry.Timestamp); err != nil {
		return common.Address{}, err
	}

	return addr, nil
}

// checkReplay enforces the monotone timestamp invariant for one wallet. The
// read-modify-write is serialized per key so a concurrent pair of proofs
// cannot lose the newer timestamp.
func (v *Verifier) checkReplay(ctx context.Context, ticker string, addr common.Address, timestamp int64) error {
	key := timestampKey(ticker, addr)
	unlock := v.locks.Lock(key)
	defer unlock()

	raw, found, err := v.store.Get(ctx, key)
	if err != nil {
		return errors.Wrapf(types.ErrStorageUnavailable, "read wallet timestamp: %v", err)
	}

	if found {
		last, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return errors.Wrapf(types.ErrStorageUnavailable, "corrupt wallet timestamp: %v", err)
		}
		if timestamp < last {
			return errors.Wrapf(types.ErrStaleSignature, "timestamp %d, last seen %d", timestamp, last)
		}
		if timestamp == last {
			return nil
		}
	}

	value := strconv.FormatInt(timestamp, 10)
	if err := v.store.Set(ctx, key, []byte(value)); err != nil {
		return errors.Wrapf(types.ErrStorageUnavailable, "write wallet timestamp: %v", err)
	}
	return nil
}

// HasEntry reports whether pub declares a wallet usable for ticker, the EVM
// fallback included. The orchestrator uses this to order its strategies.
func HasEntry(pub *types.Publication, ticker string) bool {
	_, _, ok := walletFor(pub, ticker)
	return ok
}

// walletFor finds the wallet entry for ticker, falling back to another
// EVM-compatible ticker when the exact one is absent.
func walletFor(pub *types.Publication, ticker string) (types.WalletEntry, string, bool) {
	if w, ok := pub.Wallet(ticker); ok {
		return w, ticker, true
	}

	// Fallback only applies within the shared EVM address space.
	if isEVMTicker(ticker) {
		for _, alt := range evmTickers {
			if alt == ticker {
				continue
			}
			if w, ok := pub.Wallet(alt); ok {
				return w, alt, true
			}
		}
	}

	return types.WalletEntry{}, "", false
}

func isEVMTicker(ticker string) bool {
	for _, t := range evmTickers {
		if t == ticker {
			return true
		}
	}
	return false
}

func timestampKey(ticker string, addr common.Address) string {
	return store.WalletTimestampPrefix + ticker + ":" + strings.ToLower(addr.Hex())
}
