// Package types defines the shared data model for the MintGate challenge
// verification engine: the publication submitted by an author, the wallet
// proofs attached to it, and the error taxonomy surfaced to callers.
package types

// WalletEntry is an author-declared wallet for a single chain, together with
// the proof material that ties the wallet to the publication's signing key.
type WalletEntry struct {
	// Address is either a plain chain address or a domain-style name
	// (e.g. an ENS name) that resolves to one.
	Address string `json:"address"`

	// Signature is the hex-encoded signature over the canonical
	// wallet-ownership message.
	Signature string `json:"signature"`

	// Timestamp is the unix second the proof was produced. It doubles as
	// the replay counter: older proofs for the same wallet are rejected.
	Timestamp int64 `json:"timestamp"`
}

// SignatureMeta carries the cryptographic metadata of the publication itself.
// Only the public key is consumed here; the host runtime has already checked
// the publication signature before invoking the challenge.
type SignatureMeta struct {
	// PublicKey is the hex-encoded secp256k1 public key that signed the
	// publication (compressed or uncompressed form).
	PublicKey string `json:"publicKey"`

	Type string `json:"type,omitempty"`
}

// Publication is the normalized, read-only input handed over by the host
// plugin runtime.
type Publication struct {
	// Author is the author's identity string. It may be a plain chain
	// address or a domain-style name ending in a recognized suffix.
	Author string `json:"author"`

	// Wallets maps a chain ticker (e.g. "eth") to the author's declared
	// wallet for that chain.
	Wallets map[string]WalletEntry `json:"wallets,omitempty"`

	// Signature is the publication's own signature metadata.
	Signature SignatureMeta `json:"signature"`

	// Community is the enclosing community identifier, when present.
	Community string `json:"community,omitempty"`
}

// Wallet returns the wallet entry for ticker, reporting whether one exists.
func (p *Publication) Wallet(ticker string) (WalletEntry, bool) {
	if p == nil || p.Wallets == nil {
		return WalletEntry{}, false
	}
	w, ok := p.Wallets[ticker]
	return w, ok
}
