package wallet

import (
	"crypto/ecdsa"
	"encoding/hex"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signMessage(t *testing.T, key *ecdsa.PrivateKey, message []byte) string {
	t.Helper()
	sig, err := crypto.Sign(accounts.TextHash(message), key)
	require.NoError(t, err)
	return hex.EncodeToString(sig)
}

func TestCanonicalMessageIsDeterministic(t *testing.T) {
	a, err := CanonicalMessage("0xAbCd", 1700000000)
	require.NoError(t, err)
	b, err := CanonicalMessage("0xAbCd", 1700000000)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	assert.JSONEq(t,
		`{"domainSeparator":"mintgate-author-wallet","authorAddress":"0xAbCd","timestamp":1700000000}`,
		string(a),
	)
}

func TestRecoverSignerRoundTrip(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	want := crypto.PubkeyToAddress(key.PublicKey)

	message, err := CanonicalMessage("author1", 1700000000)
	require.NoError(t, err)

	got, err := RecoverSigner(message, signMessage(t, key, message))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRecoverSignerLegacyRecoveryID(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	want := crypto.PubkeyToAddress(key.PublicKey)

	message, err := CanonicalMessage("author1", 1700000000)
	require.NoError(t, err)

	sig, err := crypto.Sign(accounts.TextHash(message), key)
	require.NoError(t, err)
	// Ethereum RPC wallets report V as 27/28.
	sig[crypto.RecoveryIDOffset] += 27

	got, err := RecoverSigner(message, "0x"+hex.EncodeToString(sig))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRecoverSignerRejectsGarbage(t *testing.T) {
	message, err := CanonicalMessage("author1", 1)
	require.NoError(t, err)

	_, err = RecoverSigner(message, "not-hex")
	require.Error(t, err)

	_, err = RecoverSigner(message, "deadbeef")
	require.Error(t, err)
}

func TestDeriveSignerAddress(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	want := crypto.PubkeyToAddress(key.PublicKey)

	compressed := hex.EncodeToString(crypto.CompressPubkey(&key.PublicKey))
	got, err := DeriveSignerAddress(compressed)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	uncompressed := hex.EncodeToString(crypto.FromECDSAPub(&key.PublicKey))
	got, err = DeriveSignerAddress("0x" + uncompressed)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = DeriveSignerAddress("00ff")
	require.Error(t, err)
}
