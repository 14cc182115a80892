// Package wallet proves that a claimed wallet address is controlled by the
// key that authored a publication. It recomputes the canonical signed
// message, verifies the EIP-191 personal signature, and enforces replay
// protection through a persisted last-seen timestamp.
package wallet

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/plebbitlabs/mintgate/types"
)

// DomainSeparator is the fixed domain-separation tag included in every
// wallet-ownership message. It prevents a signature produced for another
// protocol from being replayed here.
const DomainSeparator = "mintgate-author-wallet"

// signedMessage is the canonical structure a wallet signs. Field order is
// fixed by the struct declaration, so the JSON encoding is deterministic.
type signedMessage struct {
	DomainSeparator string `json:"domainSeparator"`
	AuthorAddress   string `json:"authorAddress"`
	Timestamp       int64  `json:"timestamp"`
}

// CanonicalMessage returns the exact byte string a wallet must sign to prove
// it belongs to author at the given timestamp.
func CanonicalMessage(author string, timestamp int64) ([]byte, error) {
	msg, err := json.Marshal(signedMessage{
		DomainSeparator: DomainSeparator,
		AuthorAddress:   author,
		Timestamp:       timestamp,
	})
	if err != nil {
		return nil, errors.Wrap(err, "marshal signed message")
	}
	return msg, nil
}

// RecoverSigner recovers the address that produced sigHex over an EIP-191
// personal message.
func RecoverSigner(message []byte, sigHex string) (common.Address, error) {
	sig, err := hex.DecodeString(strings.TrimPrefix(sigHex, "0x"))
	if err != nil {
		return common.Address{}, errors.Wrapf(types.ErrInvalidSignature, "decode signature: %v", err)
	}
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, errors.Wrapf(types.ErrInvalidSignature,
			"signature length %d, want %d", len(sig), crypto.SignatureLength)
	}

	// Wallets encode the recovery id as 27/28 per the Ethereum RPC
	// convention; go-ethereum expects 0/1.
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig = append([]byte(nil), sig...)
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash(message), sig)
	if err != nil {
		return common.Address{}, errors.Wrapf(types.ErrInvalidSignature, "recover public key: %v", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// DeriveSignerAddress derives the EVM address controlled by a publication's
// signing key, given its hex-encoded secp256k1 public key in compressed or
// uncompressed form.
func DeriveSignerAddress(publicKeyHex string) (common.Address, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(publicKeyHex, "0x"))
	if err != nil {
		return common.Address{}, errors.Wrap(err, "decode public key")
	}

	switch len(raw) {
	case 33:
		pub, err := crypto.DecompressPubkey(raw)
		if err != nil {
			return common.Address{}, errors.Wrap(err, "decompress public key")
		}
		return crypto.PubkeyToAddress(*pub), nil
	case 65:
		pub, err := crypto.UnmarshalPubkey(raw)
		if err != nil {
			return common.Address{}, errors.Wrap(err, "unmarshal public key")
		}
		return crypto.PubkeyToAddress(*pub), nil
	default:
		return common.Address{}, errors.Errorf("invalid public key length: %d", len(raw))
	}
}
