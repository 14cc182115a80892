// Package chain provides the read-only chain client used by the challenge:
// provider resolution per chain ticker, MintPass contract reads over
// JSON-RPC, and ENS name resolution.
package chain

import (
	"fmt"
	"time"

	"github.com/plebbitlabs/mintgate/types"
)

// Provider describes the RPC endpoints for one chain ticker.
type Provider struct {
	// URLs are candidate JSON-RPC endpoints, tried in order.
	URLs []string `json:"urls"`

	// ChainID is the EVM chain id of the network.
	ChainID int64 `json:"chain_id"`

	// RequestTimeout bounds every RPC round trip made against this
	// provider. Zero means DefaultRequestTimeout.
	RequestTimeout time.Duration `json:"request_timeout,omitempty"`
}

// DefaultRequestTimeout bounds chain RPC calls when a provider does not set
// its own timeout. A timed-out call is reported as ErrChainUnavailable, never
// as an ownership result.
const DefaultRequestTimeout = 30 * time.Second

// DefaultProviders returns the built-in provider table. Callers normally
// overlay their own table on top of it; an explicit per-call RPC override
// beats both.
func DefaultProviders() map[string]Provider {
	return map[string]Provider{
		"eth": {
			URLs:    []string{"https://ethrpc.xyz", "https://cloudflare-eth.com"},
			ChainID: 1,
		},
		"matic": {
			URLs:    []string{"https://polygon-rpc.com"},
			ChainID: 137,
		},
		"avax": {
			URLs:    []string{"https://api.avax.network/ext/bc/C/rpc"},
			ChainID: 43114,
		},
	}
}

// ResolveProvider resolves the provider for ticker. Precedence is the
// explicit override URL, then the caller-supplied table, then the built-in
// defaults. Returns types.ErrUnsupportedChain when nothing resolves.
func ResolveProvider(ticker, overrideURL string, table map[string]Provider) (Provider, error) {
	if overrideURL != "" {
		p := Provider{URLs: []string{overrideURL}}
		if t, ok := table[ticker]; ok {
			p.ChainID = t.ChainID
		} else if d, ok := DefaultProviders()[ticker]; ok {
			p.ChainID = d.ChainID
		}
		return p, nil
	}

	if p, ok := table[ticker]; ok && len(p.URLs) > 0 {
		return p, nil
	}

	if p, ok := DefaultProviders()[ticker]; ok {
		return p, nil
	}

	return Provider{}, fmt.Errorf("%w: %q", types.ErrUnsupportedChain, ticker)
}

// Timeout returns the effective request timeout for the provider.
func (p Provider) Timeout() time.Duration {
	if p.RequestTimeout > 0 {
		return p.RequestTimeout
	}
	return DefaultRequestTimeout
}
