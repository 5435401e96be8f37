package txtype

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseStartTag_RoundTrips(t *testing.T) {
	for _, v := range All {
		got, ok := ParseStartTag(v.StartTag())
		require.True(t, ok)
		require.Equal(t, v, got)
	}
}

func TestParseStartTag_Unknown(t *testing.T) {
	_, ok := ParseStartTag("bogus-transaction-start")
	require.False(t, ok)
}

func TestTagsAreDistinctPerVariant(t *testing.T) {
	seen := map[string]bool{}
	for _, v := range All {
		for _, tag := range []string{v.StartTag(), v.OkTag(), v.ErrorTag()} {
			require.False(t, seen[tag], "duplicate tag %q", tag)
			seen[tag] = true
		}
	}
}
