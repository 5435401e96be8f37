package nostrevent

import "strings"

// DelegationTag is the substrate's delegation convention: a "delegation"
// tag whose value names the delegator's public identity. Verifying the
// accompanying conditions/token is a relay-client responsibility (§1
// Non-goals); this package only extracts the claimed delegator.
const DelegationTag = "delegation"

// ResolveAuthor implements §4.1 step 3: the author is the delegator when a
// valid delegation tag is present, otherwise the signer. A delegation tag
// that is present but malformed (missing or blank delegator) is reported
// as claimed-but-unresolvable, which the caller must reject as
// bad-delegation rather than silently falling back to the signer.
func ResolveAuthor(e *Event) (author string, delegationClaimed bool, resolved bool) {
	value, ok := e.Tags.First(DelegationTag)
	if !ok {
		return e.Signer, false, true
	}

	delegator := strings.TrimSpace(value)
	if delegator == "" {
		return "", true, false
	}
	return delegator, true, true
}
