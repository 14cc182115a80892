package challenge

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plebbitlabs/mintgate/chain"
	"github.com/plebbitlabs/mintgate/store"
	"github.com/plebbitlabs/mintgate/types"
	"github.com/plebbitlabs/mintgate/wallet"
)

// fakeChain is an in-memory chain.Reader recording which calls were made.
type fakeChain struct {
	owners       map[common.Address][]chain.Token
	names        map[string]common.Address
	dialErr      error
	resolveCalls int
	ownsCalls    int
}

func (f *fakeChain) OwnsTokenType(_ context.Context, owner common.Address, tokenType uint16) (bool, error) {
	f.ownsCalls++
	for _, tok := range f.owners[owner] {
		if tok.TokenType == tokenType {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeChain) TokensOfOwner(_ context.Context, owner common.Address) ([]chain.Token, error) {
	return f.owners[owner], nil
}

func (f *fakeChain) ResolveName(_ context.Context, name string) (common.Address, error) {
	f.resolveCalls++
	addr, ok := f.names[name]
	if !ok {
		return common.Address{}, types.ErrEnsResolutionFailed
	}
	return addr, nil
}

func newTestChallenge(fc *fakeChain) *Challenge {
	return New(store.NewMemory(), WithReaderFactory(
		func(_ context.Context, _ chain.Provider, _ common.Address) (chain.Reader, error) {
			if fc.dialErr != nil {
				return nil, fc.dialErr
			}
			return fc, nil
		},
	))
}

func provedPublication(t *testing.T, key *ecdsa.PrivateKey, author string) *types.Publication {
	t.Helper()

	const timestamp = int64(1700000000)
	message, err := wallet.CanonicalMessage(author, timestamp)
	require.NoError(t, err)
	sig, err := crypto.Sign(accounts.TextHash(message), key)
	require.NoError(t, err)

	return &types.Publication{
		Author: author,
		Wallets: map[string]types.WalletEntry{
			"eth": {
				Address:   crypto.PubkeyToAddress(key.PublicKey).Hex(),
				Signature: hex.EncodeToString(sig),
				Timestamp: timestamp,
			},
		},
	}
}

func TestVerifyWalletPathSuccess(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	owner := crypto.PubkeyToAddress(key.PublicKey)

	fc := &fakeChain{
		owners: map[common.Address][]chain.Token{
			owner: {{TokenID: big.NewInt(7), TokenType: 0}},
		},
	}
	c := newTestChallenge(fc)

	result, err := c.Verify(context.Background(),
		map[string]string{"rpcUrl": "http://test"},
		provedPublication(t, key, "author1"), "c1")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, result.Error)
	assert.Zero(t, fc.resolveCalls, "plain author with a wallet never touches ENS")
}

func TestVerifyEnsPathFirstForDomainAuthor(t *testing.T) {
	owner := common.HexToAddress("0x5000000000000000000000000000000000000005")
	fc := &fakeChain{
		owners: map[common.Address][]chain.Token{
			owner: {{TokenID: big.NewInt(3), TokenType: 0}},
		},
		names: map[string]common.Address{"author.eth": owner},
	}
	c := newTestChallenge(fc)

	// Domain-style author with no wallet entry at all.
	pub := &types.Publication{Author: "author.eth"}

	result, err := c.Verify(context.Background(),
		map[string]string{"rpcUrl": "http://test"}, pub, "c1")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, fc.resolveCalls)
}

func TestVerifyBothStrategiesFailShowsFirstMessage(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	// The wallet proof is valid cryptographically but the owner holds no
	// credential, so the wallet path fails with the templated message;
	// the ENS path fails because the author is not a domain name.
	fc := &fakeChain{}
	c := newTestChallenge(fc)

	result, err := c.Verify(context.Background(),
		map[string]string{
			"rpcUrl": "http://test",
			"error":  "{authorAddress} holds no pass",
		},
		provedPublication(t, key, "author1"), "c1")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "author1 holds no pass", result.Error,
		"the first-tried strategy's message is the user-facing one")
}

func TestVerifyStaleProofFails(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	owner := crypto.PubkeyToAddress(key.PublicKey)

	fc := &fakeChain{
		owners: map[common.Address][]chain.Token{
			owner: {{TokenID: big.NewInt(7), TokenType: 0}},
		},
	}
	c := newTestChallenge(fc)
	opts := map[string]string{"rpcUrl": "http://test"}

	newer := provedPublication(t, key, "author1")
	result, err := c.Verify(context.Background(), opts, newer, "c1")
	require.NoError(t, err)
	require.True(t, result.Success)

	// Re-sign with an older timestamp.
	older := provedPublication(t, key, "author1")
	message, err := wallet.CanonicalMessage("author1", 1000)
	require.NoError(t, err)
	sig, err := crypto.Sign(accounts.TextHash(message), key)
	require.NoError(t, err)
	w := older.Wallets["eth"]
	w.Signature = hex.EncodeToString(sig)
	w.Timestamp = 1000
	older.Wallets["eth"] = w

	result, err = c.Verify(context.Background(), opts, older, "c1")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, types.ErrStaleSignature.Error(), result.Error)
}

func TestVerifyUnknownChainIsConfigError(t *testing.T) {
	c := newTestChallenge(&fakeChain{})

	_, err := c.Verify(context.Background(),
		map[string]string{
			"chainTicker":     "doge",
			"contractAddress": "0x4000000000000000000000000000000000000004",
		},
		&types.Publication{Author: "author1"}, "")

	var cfgErr *types.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestVerifyDialFailureIsRetryableNotConfig(t *testing.T) {
	fc := &fakeChain{dialErr: types.ErrChainUnavailable}
	c := newTestChallenge(fc)

	result, err := c.Verify(context.Background(),
		map[string]string{"rpcUrl": "http://test"},
		&types.Publication{Author: "author1"}, "")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, types.ErrChainUnavailable.Error(), result.Error)
}
