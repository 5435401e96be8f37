package engine

import "github.com/nostrbank/ledgerd/internal/txtype"

// RejectionReason is a deterministic, non-retryable failure identified
// during pre-validation or mutation (§7). Each reason carries a stable,
// published outcome message.
type RejectionReason int

const (
	ReasonUnparsableContent RejectionReason = iota
	ReasonBadDelegation
	ReasonBadRecipientTags
	ReasonNonPositiveAmount
	ReasonUnsupportedToken
	ReasonUnsupportedTransactionType
	ReasonUnauthorisedMint
	ReasonUnauthorisedBurn
	ReasonInsufficientFunds
	ReasonNetworkError
)

// Message returns the exact string published in the error outcome event's
// content for this reason.
func (r RejectionReason) Message() string {
	switch r {
	case ReasonUnparsableContent:
		return "Unparsable content"
	case ReasonBadDelegation:
		return "Bad delegation"
	case ReasonBadRecipientTags:
		return "Transaction not supported"
	case ReasonNonPositiveAmount:
		return "Token amount must be a positive number"
	case ReasonUnsupportedToken:
		return "Token not supported"
	case ReasonUnsupportedTransactionType:
		return "Transaction not supported"
	case ReasonUnauthorisedMint:
		return "Author cannot mint this token"
	case ReasonUnauthorisedBurn:
		return "Author cannot burn this token"
	case ReasonInsufficientFunds:
		return "Not enough funds"
	case ReasonNetworkError:
		return "Network Error"
	default:
		return "Unknown error"
	}
}

// Rejection is a deterministic pre-validation or mutation failure: it is
// never retried, the triggering Event is persisted (unless its id is not a
// valid UUID, in which case there is no row to write), and exactly one
// error outcome event is published carrying Reason.Message().
type Rejection struct {
	Variant txtype.Variant
	Reason  RejectionReason
}

func (r *Rejection) Error() string {
	return r.Reason.Message()
}

// Reject builds a Rejection for variant/reason, the form every
// pre-validation and handler failure path returns.
func Reject(variant txtype.Variant, reason RejectionReason) *Rejection {
	return &Rejection{Variant: variant, Reason: reason}
}
