// Package engine implements the cooldown and binding state machine: given a
// verified candidate owner it decides whether any of the owner's credentials
// may be used by the current author, and atomically updates the persisted
// usage and binding facts.
package engine

// Decision is the outcome of classifying one candidate token.
type Decision int

const (
	// Accept means the token may be used by the current author.
	Accept Decision = iota

	// RejectCooldown means another author used the token too recently.
	// The caller moves on to the next candidate token.
	RejectCooldown

	// RejectBound means the token is permanently bound to a different
	// author. This terminates the whole verification, regardless of
	// cooldown state.
	RejectBound
)

// UsageRecord is the persisted "who used this credential last" fact.
type UsageRecord struct {
	Author     string `json:"author"`
	LastUsedAt int64  `json:"timestamp"`
}

// Classify decides whether a token with the given persisted state may be used
// by author at time now. It is pure so the cooldown and binding semantics can
// be tested without any I/O.
//
// Binding is a harder constraint than cooldown: a token bound to another
// author is rejected even when the cooldown has elapsed. A token qualifies
// when it was never used, when the current author is renewing their own use,
// or when the cooldown boundary has been reached (>=). A cooldown of zero
// disables the transfer lock entirely.
func Classify(usage *UsageRecord, boundAuthor string, now int64, author string, cooldownSeconds int64, bindingEnabled bool) Decision {
	if bindingEnabled && boundAuthor != "" && boundAuthor != author {
		return RejectBound
	}

	switch {
	case usage == nil:
		return Accept
	case usage.Author == author:
		return Accept
	case now-usage.LastUsedAt >= cooldownSeconds:
		return Accept
	default:
		return RejectCooldown
	}
}
