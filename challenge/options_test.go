package challenge

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plebbitlabs/mintgate/types"
)

func TestParseOptionsDefaults(t *testing.T) {
	cfg, err := ParseOptions(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "eth", cfg.ChainTicker)
	assert.Equal(t, defaultContracts["eth"], cfg.ContractAddress)
	assert.Equal(t, uint16(0), cfg.RequiredTokenType)
	assert.Equal(t, int64(0), cfg.CooldownSeconds)
	assert.False(t, cfg.BindToFirstAuthor)
	assert.Empty(t, cfg.RPCOverride)
}

func TestParseOptionsFull(t *testing.T) {
	cfg, err := ParseOptions(map[string]string{
		"chainTicker":             "eth",
		"contractAddress":         "0x4000000000000000000000000000000000000004",
		"requiredTokenType":       "2",
		"bindToFirstAuthor":       "true",
		"transferCooldownSeconds": "604800",
		"error":                   "no pass for {authorAddress}",
		"rpcUrl":                  "http://127.0.0.1:8545",
	})
	require.NoError(t, err)

	assert.Equal(t, common.HexToAddress("0x4000000000000000000000000000000000000004"), cfg.ContractAddress)
	assert.Equal(t, uint16(2), cfg.RequiredTokenType)
	assert.True(t, cfg.BindToFirstAuthor)
	assert.Equal(t, int64(604800), cfg.CooldownSeconds)
	assert.Equal(t, "http://127.0.0.1:8545", cfg.RPCOverride)
	assert.Equal(t, "no pass for alice", cfg.NotOwnerMessage("alice"))
}

// Every recognized option key must survive the schema round trip on its own.
// The schema's shape keys and the destination struct are coupled by zog's
// field lookup, so a drifted field name shows up here as a panic.
func TestParseOptionsEveryKeyMaps(t *testing.T) {
	keys := map[string]string{
		"chainTicker":             "eth",
		"contractAddress":         "0x4000000000000000000000000000000000000004",
		"requiredTokenType":       "1",
		"bindToFirstAuthor":       "false",
		"transferCooldownSeconds": "60",
		"error":                   "msg {authorAddress}",
		"rpcUrl":                  "http://127.0.0.1:8545",
	}

	for key, value := range keys {
		t.Run(key, func(t *testing.T) {
			require.NotPanics(t, func() {
				_, err := ParseOptions(map[string]string{key: value})
				if key == "rpcUrl" {
					require.NoError(t, err)
				}
			})
		})
	}

	cfg, err := ParseOptions(map[string]string{"rpcUrl": "http://127.0.0.1:8545"})
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8545", cfg.RPCOverride)
}

func TestParseOptionsInvalid(t *testing.T) {
	tests := []struct {
		name string
		opts map[string]string
	}{
		{"bad contract address", map[string]string{"contractAddress": "not-an-address"}},
		{"negative token type", map[string]string{"requiredTokenType": "-1"}},
		{"token type overflow", map[string]string{"requiredTokenType": "70000"}},
		{"non-numeric cooldown", map[string]string{"transferCooldownSeconds": "soon"}},
		{"bad bool", map[string]string{"bindToFirstAuthor": "maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOptions(tt.opts)
			require.Error(t, err)

			var cfgErr *types.ConfigError
			require.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestParseOptionsNoContractForChain(t *testing.T) {
	_, err := ParseOptions(map[string]string{"chainTicker": "avax"})
	var cfgErr *types.ConfigError
	require.ErrorAs(t, err, &cfgErr)

	// An explicit contract fixes it.
	cfg, err := ParseOptions(map[string]string{
		"chainTicker":     "avax",
		"contractAddress": "0x4000000000000000000000000000000000000004",
	})
	require.NoError(t, err)
	assert.Equal(t, "avax", cfg.ChainTicker)
}
