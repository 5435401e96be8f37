package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nostrbank/ledgerd/internal/txtype"
)

func TestRejectionReason_Message(t *testing.T) {
	cases := map[RejectionReason]string{
		ReasonUnparsableContent:          "Unparsable content",
		ReasonBadDelegation:              "Bad delegation",
		ReasonBadRecipientTags:           "Transaction not supported",
		ReasonNonPositiveAmount:          "Token amount must be a positive number",
		ReasonUnsupportedToken:           "Token not supported",
		ReasonUnsupportedTransactionType: "Transaction not supported",
		ReasonUnauthorisedMint:           "Author cannot mint this token",
		ReasonUnauthorisedBurn:           "Author cannot burn this token",
		ReasonInsufficientFunds:          "Not enough funds",
		ReasonNetworkError:               "Network Error",
	}
	for reason, want := range cases {
		require.Equal(t, want, reason.Message())
	}
}

func TestRejectionReason_BadRecipientAndUnsupportedTypeShareMessage(t *testing.T) {
	// Both reasons are deliberately indistinguishable on the wire: a
	// caller probing for malformed tags vs. an unknown transaction type
	// learns nothing that would help them craft a better attack.
	require.Equal(t, ReasonBadRecipientTags.Message(), ReasonUnsupportedTransactionType.Message())
}

func TestReject(t *testing.T) {
	r := Reject(txtype.Internal, ReasonInsufficientFunds)
	require.Equal(t, txtype.Internal, r.Variant)
	require.Equal(t, ReasonInsufficientFunds, r.Reason)
	require.Equal(t, "Not enough funds", r.Error())
}
