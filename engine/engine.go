package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/plebbitlabs/mintgate/chain"
	"github.com/plebbitlabs/mintgate/store"
	"github.com/plebbitlabs/mintgate/types"
)

const secondsPerDay = 86400

// ChainReader is the subset of the chain client the engine depends on.
type ChainReader interface {
	OwnsTokenType(ctx context.Context, owner common.Address, tokenType uint16) (bool, error)
	TokensOfOwner(ctx context.Context, owner common.Address) ([]chain.Token, error)
}

// Engine applies the cooldown and binding policy for verified owner
// addresses. It is the only mutator of the usage and binding namespaces and
// must outlive individual verifications: the per-token lock arena it carries
// is what serializes concurrent attempts on the same credential.
type Engine struct {
	store store.Store
	locks *store.KeyedMutex
	now   func() time.Time
}

// New creates an Engine persisting its records in s.
func New(s store.Store) *Engine {
	return &Engine{
		store: s,
		locks: store.NewKeyedMutex(),
		now:   time.Now,
	}
}

// Verify decides whether owner holds a usable credential of the required type
// for author, updating the persisted usage and binding records on success.
// Ownership facts are read through reads, which is supplied per call because
// the RPC endpoint is part of the policy. Policy rejections are returned as
// *types.PolicyFailure; transient chain or storage failures keep their
// sentinel identity so callers can tell the author to retry.
func (e *Engine) Verify(ctx context.Context, reads ChainReader, owner common.Address, author, community string, cfg types.PolicyConfig) error {
	owns, err := reads.OwnsTokenType(ctx, owner, cfg.RequiredTokenType)
	if err != nil {
		return err
	}
	if !owns {
		return &types.PolicyFailure{Message: cfg.NotOwnerMessage(author)}
	}

	tokens, err := reads.TokensOfOwner(ctx, owner)
	if err != nil {
		return err
	}

	// Enumeration order is the tie-break between qualifying tokens, so the
	// candidates are deliberately not re-sorted.
	candidates := tokens[:0:0]
	for _, t := range tokens {
		if t.TokenType == cfg.RequiredTokenType {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		// Ownership said yes but enumeration disagrees. Treat like
		// missing ownership rather than trusting the cheaper call.
		return &types.PolicyFailure{Message: cfg.NotOwnerMessage(author)}
	}

	now := e.now().Unix()
	for _, token := range candidates {
		accepted, err := e.tryToken(ctx, token.TokenID, author, community, now, cfg)
		if err != nil {
			return err
		}
		if accepted {
			return nil
		}
	}

	days := (cfg.CooldownSeconds + secondsPerDay - 1) / secondsPerDay
	return &types.PolicyFailure{Message: cfg.InCooldownMessage(days)}
}

// tryToken runs the classify-then-update sequence for a single token. The
// whole read-modify-write is serialized per (contract, tokenId): at most one
// concurrent verification can transition a token's records.
func (e *Engine) tryToken(ctx context.Context, tokenID *big.Int, author, community string, now int64, cfg types.PolicyConfig) (bool, error) {
	key := usageKey(cfg.ContractAddress, tokenID)
	unlock := e.locks.Lock(key)
	defer unlock()

	usage, err := e.readUsage(ctx, key)
	if err != nil {
		return false, err
	}

	boundAuthor := ""
	bindKey := bindingKey(community, cfg.ContractAddress, tokenID)
	if cfg.BindToFirstAuthor {
		boundAuthor, err = e.readBinding(ctx, bindKey)
		if err != nil {
			return false, err
		}
	}

	switch Classify(usage, boundAuthor, now, author, cfg.CooldownSeconds, cfg.BindToFirstAuthor) {
	case RejectBound:
		return false, &types.PolicyFailure{Message: cfg.AlreadyBoundMessage()}
	case RejectCooldown:
		return false, nil
	}

	// Binding is recorded before usage so a crash between the two writes
	// can never leave a used-but-unbound credential.
	if cfg.BindToFirstAuthor && boundAuthor == "" {
		if err := e.store.Set(ctx, bindKey, []byte(author)); err != nil {
			return false, fmt.Errorf("%w: write binding: %v", types.ErrStorageUnavailable, err)
		}
	}

	record, err := json.Marshal(UsageRecord{Author: author, LastUsedAt: now})
	if err != nil {
		return false, fmt.Errorf("marshal usage record: %w", err)
	}
	if err := e.store.Set(ctx, key, record); err != nil {
		return false, fmt.Errorf("%w: write usage: %v", types.ErrStorageUnavailable, err)
	}

	return true, nil
}

func (e *Engine) readUsage(ctx context.Context, key string) (*UsageRecord, error) {
	raw, found, err := e.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: read usage: %v", types.ErrStorageUnavailable, err)
	}
	if !found {
		return nil, nil
	}

	var record UsageRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("%w: corrupt usage record: %v", types.ErrStorageUnavailable, err)
	}
	return &record, nil
}

func (e *Engine) readBinding(ctx context.Context, key string) (string, error) {
	raw, found, err := e.store.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("%w: read binding: %v", types.ErrStorageUnavailable, err)
	}
	if !found {
		return "", nil
	}
	return string(raw), nil
}
