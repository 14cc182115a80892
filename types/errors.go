package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for the verification pipeline. Strategy code matches on
// these with errors.Is; the orchestrator converts them to user-facing text.
var (
	// Wallet verifier errors
	ErrWalletNotSet             = errors.New("author wallet not set for chain")
	ErrInvalidAddressFormat     = errors.New("invalid wallet address format")
	ErrDomainResolutionMismatch = errors.New("domain resolves to a different address than the publication signer")
	ErrMissingSignature         = errors.New("wallet signature or timestamp missing")
	ErrInvalidSignature         = errors.New("invalid wallet signature")
	ErrStaleSignature           = errors.New("wallet signature timestamp is older than a previously seen proof")

	// ENS author resolver errors
	ErrEnsResolutionFailed = errors.New("failed to resolve author name to an address")

	// Transient infrastructure errors. Both are fail-closed: the author is
	// told to retry, ownership is never inferred from an outage.
	ErrChainUnavailable   = errors.New("blockchain temporarily unavailable, please try again")
	ErrStorageUnavailable = errors.New("storage temporarily unavailable, please try again")

	// Chain adapter errors
	ErrUnsupportedChain = errors.New("unsupported chain ticker")
)

// PolicyFailure is a terminal policy decision carrying the exact user-facing
// message. The orchestrator surfaces the message verbatim.
type PolicyFailure struct {
	Message string
}

func (e *PolicyFailure) Error() string { return e.Message }

// ConfigError reports fatal misconfiguration of the challenge. Unlike policy
// failures it is returned as a Go error to the host runtime rather than being
// folded into the user-facing result.
type ConfigError struct {
	Option string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Option == "" {
		return fmt.Sprintf("challenge misconfigured: %s", e.Reason)
	}
	return fmt.Sprintf("challenge misconfigured: option %q: %s", e.Option, e.Reason)
}

// NewConfigError creates a ConfigError for the given option.
func NewConfigError(option, reason string) error {
	return &ConfigError{Option: option, Reason: reason}
}

// IsRetryable reports whether err is a transient infrastructure failure that
// the author can simply retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrChainUnavailable) || errors.Is(err, ErrStorageUnavailable)
}
