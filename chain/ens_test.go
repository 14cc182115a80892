package chain

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

// Reference vectors from EIP-137.
func TestNamehash(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"", "0x0000000000000000000000000000000000000000000000000000000000000000"},
		{"eth", "0x93cdeb708b7545dc668eb9280176169d1c33cfd8ed6f04690a0bcc88a93fc4ae"},
		{"foo.eth", "0xde9b09fd7c5f901e23a3f19fecc54828e9c848539801e86591bd9801b019f84f"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, common.HexToHash(tt.want), Namehash(tt.name))
		})
	}
}

func TestNamehashIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, Namehash("foo.eth"), Namehash("Foo.ETH"))
}

func TestIsDomainName(t *testing.T) {
	assert.True(t, IsDomainName("vitalik.eth"))
	assert.True(t, IsDomainName("sub.name.ETH"))
	assert.False(t, IsDomainName("0x281055afc982d96fab65b3a49cac8b878184cb16"))
	assert.False(t, IsDomainName("something.com"))
}
