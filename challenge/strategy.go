package challenge

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/plebbitlabs/mintgate/chain"
	"github.com/plebbitlabs/mintgate/types"
	"github.com/plebbitlabs/mintgate/wallet"
)

// strategy is one way of obtaining a verified candidate owner address.
type strategy int

const (
	walletPath strategy = iota
	ensPath
)

func (s strategy) String() string {
	if s == ensPath {
		return "ens"
	}
	return "wallet"
}

// strategyOrder picks which proof to attempt first. Authors whose identity is
// itself a domain-style name, or who declared no usable wallet, get the ENS
// path first; everyone else starts with the wallet proof. Both are attempted
// unless the first succeeds.
func strategyOrder(pub *types.Publication, cfg types.PolicyConfig) []strategy {
	if chain.IsDomainName(pub.Author) || !wallet.HasEntry(pub, cfg.ChainTicker) {
		return []strategy{ensPath, walletPath}
	}
	return []strategy{walletPath, ensPath}
}

// candidate obtains the candidate owner address for one strategy.
func (c *Challenge) candidate(ctx context.Context, s strategy, reader chain.Reader, pub *types.Publication, cfg types.PolicyConfig) (common.Address, error) {
	switch s {
	case ensPath:
		return c.resolveAuthor(ctx, reader, pub)
	default:
		return c.wallets.Verify(ctx, reader, pub, cfg)
	}
}

// resolveAuthor is the ENS author path: the author identity must itself be a
// domain-style name owning the required credential. Holding the name is the
// authorization claim, so no signature is checked here.
func (c *Challenge) resolveAuthor(ctx context.Context, reader chain.Reader, pub *types.Publication) (common.Address, error) {
	if !chain.IsDomainName(pub.Author) {
		return common.Address{}, types.ErrEnsResolutionFailed
	}
	return reader.ResolveName(ctx, pub.Author)
}
