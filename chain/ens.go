package chain

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/plebbitlabs/mintgate/types"
)

// ensRegistryAddress is the ENS registry deployed on Ethereum mainnet.
var ensRegistryAddress = common.HexToAddress("0x00000000000C2E074eC69A0dBFbF1c4D966D46C1")

const ensRegistryABI = `[
	{"type":"function","name":"resolver","stateMutability":"view",
	 "inputs":[{"name":"node","type":"bytes32"}],
	 "outputs":[{"name":"","type":"address"}]}
]`

const ensResolverABI = `[
	{"type":"function","name":"addr","stateMutability":"view",
	 "inputs":[{"name":"node","type":"bytes32"}],
	 "outputs":[{"name":"","type":"address"}]}
]`

// EnsSuffix is the recognized domain-style suffix for author and wallet
// identities.
const EnsSuffix = ".eth"

// IsDomainName reports whether s is a domain-style identity rather than a
// plain chain address.
func IsDomainName(s string) bool {
	return strings.HasSuffix(strings.ToLower(s), EnsSuffix)
}

// Namehash computes the ENS namehash of name per EIP-137.
func Namehash(name string) common.Hash {
	node := common.Hash{}
	if name == "" {
		return node
	}

	labels := strings.Split(strings.ToLower(name), ".")
	for i := len(labels) - 1; i >= 0; i-- {
		labelHash := crypto.Keccak256([]byte(labels[i]))
		node = crypto.Keccak256Hash(node.Bytes(), labelHash)
	}
	return node
}

// ResolveName implements Reader. It walks registry -> resolver -> addr and
// reports an empty registration as types.ErrEnsResolutionFailed.
func (c *Client) ResolveName(ctx context.Context, name string) (common.Address, error) {
	node := Namehash(name)

	registryABI, err := abi.JSON(strings.NewReader(ensRegistryABI))
	if err != nil {
		return common.Address{}, fmt.Errorf("parse ens registry abi: %w", err)
	}
	registry := bind.NewBoundContract(c.registry, registryABI, c.eth, nil, nil)

	callCtx, cancel := context.WithTimeout(ctx, c.provider.Timeout())
	defer cancel()

	var out []any
	if err := registry.Call(&bind.CallOpts{Context: callCtx}, &out, "resolver", node); err != nil {
		return common.Address{}, fmt.Errorf("%w: ens resolver lookup: %v", types.ErrChainUnavailable, err)
	}
	resolverAddr := *abi.ConvertType(out[0], new(common.Address)).(*common.Address)
	if resolverAddr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: no resolver for %q", types.ErrEnsResolutionFailed, name)
	}

	resolverABI, err := abi.JSON(strings.NewReader(ensResolverABI))
	if err != nil {
		return common.Address{}, fmt.Errorf("parse ens resolver abi: %w", err)
	}
	resolver := bind.NewBoundContract(resolverAddr, resolverABI, c.eth, nil, nil)

	addrCtx, cancel := context.WithTimeout(ctx, c.provider.Timeout())
	defer cancel()

	var addrOut []any
	if err := resolver.Call(&bind.CallOpts{Context: addrCtx}, &addrOut, "addr", node); err != nil {
		return common.Address{}, fmt.Errorf("%w: ens addr lookup: %v", types.ErrChainUnavailable, err)
	}
	addr := *abi.ConvertType(addrOut[0], new(common.Address)).(*common.Address)
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: %q has no address record", types.ErrEnsResolutionFailed, name)
	}

	return addr, nil
}
