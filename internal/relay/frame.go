package relay

import (
	"encoding/json"
	"fmt"

	"github.com/nostrbank/ledgerd/internal/nostrevent"
)

// frameKind is the first element of every NIP-01-shaped wire frame.
type frameKind string

const (
	frameReq    frameKind = "REQ"
	frameEvent  frameKind = "EVENT"
	frameClose  frameKind = "CLOSE"
	frameOK     frameKind = "OK"
	frameEOSE   frameKind = "EOSE"
	frameClosed frameKind = "CLOSED"
	frameNotice frameKind = "NOTICE"
)

// encodeReq builds the subscription frame this relay client sends once per
// dial: ["REQ", subID, filter...] (§6).
func encodeReq(subID string, filters []nostrevent.Filter) ([]byte, error) {
	parts := make([]interface{}, 0, len(filters)+2)
	parts = append(parts, frameReq, subID)
	for _, f := range filters {
		parts = append(parts, f)
	}
	return json.Marshal(parts)
}

// encodeClose builds ["CLOSE", subID].
func encodeClose(subID string) ([]byte, error) {
	return json.Marshal([]interface{}{frameClose, subID})
}

// encodeEvent builds the publish frame: ["EVENT", event].
func encodeEvent(ev *nostrevent.Event) ([]byte, error) {
	return json.Marshal([]interface{}{frameEvent, ev})
}

// incomingFrame is a partially-decoded relay→client frame: enough to
// dispatch on kind before paying for a full nostrevent.Event decode.
type incomingFrame struct {
	kind    frameKind
	subID   string
	payload json.RawMessage
}

func decodeIncoming(data []byte) (*incomingFrame, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("relay: malformed frame: %w", err)
	}
	if len(raw) < 1 {
		return nil, fmt.Errorf("relay: empty frame")
	}

	var kind string
	if err := json.Unmarshal(raw[0], &kind); err != nil {
		return nil, fmt.Errorf("relay: frame kind: %w", err)
	}

	f := &incomingFrame{kind: frameKind(kind)}
	switch f.kind {
	case frameEvent:
		if len(raw) < 3 {
			return nil, fmt.Errorf("relay: EVENT frame missing fields")
		}
		_ = json.Unmarshal(raw[1], &f.subID)
		f.payload = raw[2]
	case frameOK, frameNotice, frameEOSE, frameClosed:
		if len(raw) >= 2 {
			f.payload = raw[1]
		}
	}
	return f, nil
}
