package types

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// AuthorAddressPlaceholder is substituted into the policy error template.
const AuthorAddressPlaceholder = "{authorAddress}"

// DefaultErrorTemplate is used when the policy does not configure one.
const DefaultErrorTemplate = "Author address " + AuthorAddressPlaceholder +
	" does not own a MintPass credential of the required type."

// PolicyConfig is the immutable per-verification policy derived from the
// host-supplied options.
type PolicyConfig struct {
	// ChainTicker selects the chain and its default contract.
	ChainTicker string

	// ContractAddress is the MintPass credential contract.
	ContractAddress common.Address

	// RequiredTokenType is the credential type an author must hold.
	RequiredTokenType uint16

	// CooldownSeconds is the minimum time before a credential used by one
	// author may be used by a different author. Zero disables the
	// transfer lock.
	CooldownSeconds int64

	// BindToFirstAuthor permanently locks a credential to the first
	// author who successfully used it within a community.
	BindToFirstAuthor bool

	// ErrorTemplate is the not-owner message template.
	ErrorTemplate string

	// RPCOverride, when set, beats both the configured and built-in
	// provider tables.
	RPCOverride string
}

// NotOwnerMessage renders the templated ownership failure for author.
func (c PolicyConfig) NotOwnerMessage(author string) string {
	tmpl := c.ErrorTemplate
	if tmpl == "" {
		tmpl = DefaultErrorTemplate
	}
	return strings.ReplaceAll(tmpl, AuthorAddressPlaceholder, author)
}

// InCooldownMessage renders the cooldown failure with the remaining wait
// rounded up to whole days.
func (c PolicyConfig) InCooldownMessage(days int64) string {
	return fmt.Sprintf(
		"This MintPass credential was used by another author recently. Try again in %d day(s).",
		days,
	)
}

// AlreadyBoundMessage renders the binding-mismatch failure.
func (c PolicyConfig) AlreadyBoundMessage() string {
	return "This MintPass credential is already bound to another author."
}
