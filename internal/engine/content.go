package engine

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/nostrbank/ledgerd/internal/amount"
)

// RequestContent is the parsed body of an inbound transaction-request
// event: a per-token amount map plus an optional memo (§6 wire format).
type RequestContent struct {
	Tokens map[string]amount.Amount `json:"tokens"`
	Memo   string                   `json:"memo,omitempty"`
}

// ParseContent deserialises raw into a RequestContent, decoding numeric
// token amounts as arbitrary-precision integers rather than float64 (§4.1
// step 2 / §6 "MUST parse numeric JSON values as big integers").
func ParseContent(raw []byte) (*RequestContent, error) {
	var wire struct {
		Tokens map[string]json.Number `json:"tokens"`
		Memo   string                 `json:"memo"`
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&wire); err != nil {
		return nil, fmt.Errorf("unparsable content: %w", err)
	}

	content := &RequestContent{
		Tokens: make(map[string]amount.Amount, len(wire.Tokens)),
		Memo:   wire.Memo,
	}
	for name, n := range wire.Tokens {
		a, err := amount.ParseJSONNumber(n)
		if err != nil {
			return nil, fmt.Errorf("unparsable content: token %q: %w", name, err)
		}
		content.Tokens[name] = a
	}
	return content, nil
}
