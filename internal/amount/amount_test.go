package amount

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseJSONNumberBigInteger(t *testing.T) {
	raw := `{"v": 123456789012345678901234567890}`
	var doc struct {
		V json.Number `json:"v"`
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&doc))

	a, err := ParseJSONNumber(doc.V)
	require.NoError(t, err)
	require.Equal(t, "123456789012345678901234567890", a.String())
}

func TestParseJSONNumberRejectsFraction(t *testing.T) {
	_, err := ParseJSONNumber(json.Number("1.5"))
	require.Error(t, err)
}

func TestArithmetic(t *testing.T) {
	a := FromInt64(100)
	b := FromInt64(40)
	require.Equal(t, "60", a.Sub(b).String())
	require.Equal(t, "140", a.Add(b).String())
	require.True(t, a.GreaterOrEqual(b))
	require.False(t, b.GreaterOrEqual(a))
}

func TestScanValueRoundTrip(t *testing.T) {
	a := FromInt64(42)
	v, err := a.Value()
	require.NoError(t, err)

	var scanned Amount
	require.NoError(t, scanned.Scan(v))
	require.Equal(t, 0, a.Cmp(scanned))
}
