// Package challenge is the host-facing entry point of the MintGate
// verification engine. It parses the policy options, orders the wallet and
// ENS proof strategies, and aggregates their outcomes into the single
// pass/fail result consumed by the host plugin runtime.
package challenge

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"

	"github.com/plebbitlabs/mintgate/chain"
	"github.com/plebbitlabs/mintgate/engine"
	"github.com/plebbitlabs/mintgate/store"
	"github.com/plebbitlabs/mintgate/types"
	"github.com/plebbitlabs/mintgate/wallet"
)

// Result is the host plugin contract: policy failures are data, not Go
// errors.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ReaderFactory opens a chain reader for a resolved provider and contract.
// Tests substitute a fake; production dials JSON-RPC.
type ReaderFactory func(ctx context.Context, p chain.Provider, contract common.Address) (chain.Reader, error)

// Challenge wires the verifier, the engine and the chain adapter together.
// One Challenge serves many concurrent verifications; the lock arenas inside
// the verifier and engine depend on it being long-lived.
type Challenge struct {
	wallets    *wallet.Verifier
	engine     *engine.Engine
	providers  map[string]chain.Provider
	openReader ReaderFactory
	log        *slog.Logger
}

// Option configures a Challenge.
type Option func(*Challenge)

// WithProviders overlays a caller-supplied provider table over the built-in
// defaults.
func WithProviders(table map[string]chain.Provider) Option {
	return func(c *Challenge) { c.providers = table }
}

// WithReaderFactory replaces the JSON-RPC dialer, mainly for tests.
func WithReaderFactory(f ReaderFactory) Option {
	return func(c *Challenge) { c.openReader = f }
}

// WithLogger sets the diagnostic logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Challenge) { c.log = log }
}

// New creates a Challenge persisting its anti-abuse records in s.
func New(s store.Store, opts ...Option) *Challenge {
	c := &Challenge{
		wallets:   wallet.NewVerifier(s),
		engine:    engine.New(s),
		providers: map[string]chain.Provider{},
		log:       slog.Default(),
		openReader: func(ctx context.Context, p chain.Provider, contract common.Address) (chain.Reader, error) {
			return chain.Dial(ctx, p, contract)
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Verify runs the challenge for one publication. The returned error is
// non-nil only for misconfiguration; every policy outcome, including
// transient chain or storage trouble, is reported through the Result.
func (c *Challenge) Verify(ctx context.Context, opts map[string]string, pub *types.Publication, community string) (Result, error) {
	cfg, err := ParseOptions(opts)
	if err != nil {
		return Result{}, err
	}

	provider, err := chain.ResolveProvider(cfg.ChainTicker, cfg.RPCOverride, c.providers)
	if err != nil {
		// An unknown ticker cannot be fixed by the author retrying.
		return Result{}, types.NewConfigError("chainTicker", err.Error())
	}

	reader, err := c.openReader(ctx, provider, cfg.ContractAddress)
	if err != nil {
		return Result{Success: false, Error: userMessage(err)}, nil
	}
	if closer, ok := reader.(interface{ Close() }); ok {
		defer closer.Close()
	}

	var messages []string
	for i, s := range strategyOrder(pub, cfg) {
		err := c.runStrategy(ctx, s, reader, pub, community, cfg)
		if err == nil {
			return Result{Success: true}, nil
		}

		msg := userMessage(err)
		messages = append(messages, msg)
		c.log.Debug("verification strategy failed",
			"strategy", s.String(),
			"attempt", i+1,
			"author", pub.Author,
			"error", err,
		)
	}

	// Both strategies failed. The first-tried strategy's message is the one
	// shown to the author; the rest stay in the diagnostic log above.
	return Result{Success: false, Error: messages[0]}, nil
}

// runStrategy obtains a candidate owner via one strategy and hands it to the
// cooldown and binding engine.
func (c *Challenge) runStrategy(ctx context.Context, s strategy, reader chain.Reader, pub *types.Publication, community string, cfg types.PolicyConfig) error {
	owner, err := c.candidate(ctx, s, reader, pub, cfg)
	if err != nil {
		return err
	}
	return c.engine.Verify(ctx, reader, owner, pub.Author, community, cfg)
}

// userMessage converts a pipeline error into the text shown to the author.
// Wrapped detail stays in the logs; the author sees the sentinel's message or
// the templated policy text.
func userMessage(err error) string {
	var policy *types.PolicyFailure
	if errors.As(err, &policy) {
		return policy.Message
	}

	for _, sentinel := range []error{
		types.ErrWalletNotSet,
		types.ErrInvalidAddressFormat,
		types.ErrDomainResolutionMismatch,
		types.ErrMissingSignature,
		types.ErrInvalidSignature,
		types.ErrStaleSignature,
		types.ErrEnsResolutionFailed,
		types.ErrChainUnavailable,
		types.ErrStorageUnavailable,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}

	return "verification failed, please try again"
}
