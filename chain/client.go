package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/plebbitlabs/mintgate/types"
)

// mintPassABI is the read-only surface of the MintPass credential contract.
const mintPassABI = `[
	{"type":"function","name":"ownerHasTokenType","stateMutability":"view",
	 "inputs":[{"name":"owner","type":"address"},{"name":"tokenType","type":"uint16"}],
	 "outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"tokensOfOwner","stateMutability":"view",
	 "inputs":[{"name":"owner","type":"address"}],
	 "outputs":[{"name":"","type":"tuple[]","components":[
		{"name":"tokenId","type":"uint256"},
		{"name":"tokenType","type":"uint16"}]}]}
]`

// Token is one credential owned by an address.
type Token struct {
	TokenID   *big.Int
	TokenType uint16
}

// Reader is the read-only chain surface the engine and resolvers depend on.
// Implementations must report transport failures as types.ErrChainUnavailable
// and never encode them as "does not own".
type Reader interface {
	// OwnsTokenType reports whether owner holds at least one credential of
	// the given type.
	OwnsTokenType(ctx context.Context, owner common.Address, tokenType uint16) (bool, error)

	// TokensOfOwner enumerates the credentials held by owner, in contract
	// enumeration order.
	TokensOfOwner(ctx context.Context, owner common.Address) ([]Token, error)

	// ResolveName resolves an ENS name to its registered address.
	ResolveName(ctx context.Context, name string) (common.Address, error)
}

// Client reads the MintPass contract and the ENS registry over JSON-RPC.
type Client struct {
	eth      *ethclient.Client
	provider Provider
	contract *bind.BoundContract
	registry common.Address
}

// Dial connects to the first reachable endpoint of provider and binds the
// MintPass contract at contractAddr.
func Dial(ctx context.Context, provider Provider, contractAddr common.Address) (*Client, error) {
	parsed, err := abi.JSON(strings.NewReader(mintPassABI))
	if err != nil {
		return nil, fmt.Errorf("parse mintpass abi: %w", err)
	}

	var lastErr error
	for _, url := range provider.URLs {
		dialCtx, cancel := context.WithTimeout(ctx, provider.Timeout())
		eth, err := ethclient.DialContext(dialCtx, url)
		cancel()
		if err != nil {
			lastErr = err
			continue
		}
		return &Client{
			eth:      eth,
			provider: provider,
			contract: bind.NewBoundContract(contractAddr, parsed, eth, nil, nil),
			registry: ensRegistryAddress,
		}, nil
	}

	return nil, fmt.Errorf("%w: dial: %v", types.ErrChainUnavailable, lastErr)
}

// OwnsTokenType implements Reader.
func (c *Client) OwnsTokenType(ctx context.Context, owner common.Address, tokenType uint16) (bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.provider.Timeout())
	defer cancel()

	var out []any
	err := c.contract.Call(&bind.CallOpts{Context: callCtx}, &out, "ownerHasTokenType", owner, tokenType)
	if err != nil {
		return false, fmt.Errorf("%w: ownerHasTokenType: %v", types.ErrChainUnavailable, err)
	}

	owns := *abi.ConvertType(out[0], new(bool)).(*bool)
	return owns, nil
}

// TokensOfOwner implements Reader.
func (c *Client) TokensOfOwner(ctx context.Context, owner common.Address) ([]Token, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.provider.Timeout())
	defer cancel()

	var out []any
	err := c.contract.Call(&bind.CallOpts{Context: callCtx}, &out, "tokensOfOwner", owner)
	if err != nil {
		return nil, fmt.Errorf("%w: tokensOfOwner: %v", types.ErrChainUnavailable, err)
	}

	raw := *abi.ConvertType(out[0], new([]struct {
		TokenId   *big.Int `abi:"tokenId"`
		TokenType uint16   `abi:"tokenType"`
	})).(*[]struct {
		TokenId   *big.Int `abi:"tokenId"`
		TokenType uint16   `abi:"tokenType"`
	})

	tokens := make([]Token, 0, len(raw))
	for _, t := range raw {
		tokens = append(tokens, Token{TokenID: t.TokenId, TokenType: t.TokenType})
	}
	return tokens, nil
}

// Close releases the underlying RPC connection.
func (c *Client) Close() {
	c.eth.Close()
}
