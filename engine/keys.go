package engine

import (
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/plebbitlabs/mintgate/store"
)

// usageKey builds the transfer-cooldown namespace key for one credential.
// The contract address is checksummed hex and the token id decimal, so the
// key material cannot contain the separator.
func usageKey(contract common.Address, tokenID *big.Int) string {
	return store.TokenUsagePrefix + strings.ToLower(contract.Hex()) + "_" + tokenID.String()
}

// bindingKey builds the binding namespace key, prefixed with the community
// identifier when one is present. Without a community the binding is global
// across communities.
func bindingKey(community string, contract common.Address, tokenID *big.Int) string {
	key := store.TokenBindingPrefix
	if community != "" {
		key += safeSegment(community) + "_"
	}
	return key + strings.ToLower(contract.Hex()) + "_" + tokenID.String() + "_binding"
}

// safeSegment makes an externally supplied identifier safe for key
// composition. Identifiers already restricted to [A-Za-z0-9.-] pass through
// unchanged; anything else is hex-encoded so no separator can be injected.
// Identifiers that spell out the encoded form themselves are encoded too,
// so a literal "hex-6162" and the encoding of "ab" map to distinct keys.
func safeSegment(s string) string {
	if strings.HasPrefix(s, "hex-") {
		return "hex-" + hex.EncodeToString([]byte(s))
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '.', c == '-':
		default:
			return "hex-" + hex.EncodeToString([]byte(s))
		}
	}
	return s
}
