// Package nostrevent models the signed events exchanged over the
// relay-based pub/sub substrate: inbound transaction requests and the
// outcome/balance-announcement events the engine publishes in response.
package nostrevent

import "encoding/json"

// Event kinds used by the ledger, per §6.
const (
	KindTransaction         = 1112  // regular: requests and outcomes
	KindBalanceAnnouncement = 31111 // parametrised-replaceable
)

// Tag is a single substrate tag: ["name", "value", ...extra].
type Tag []string

// Name returns the tag's first element, or "" for a malformed (empty) tag.
func (t Tag) Name() string {
	if len(t) == 0 {
		return ""
	}
	return t[0]
}

// Value returns the tag's second element, or "" if absent.
func (t Tag) Value() string {
	if len(t) < 2 {
		return ""
	}
	return t[1]
}

// Tags is the ordered tag list of an event.
type Tags []Tag

// First returns the value of the first tag named name, and whether one was
// found.
func (ts Tags) First(name string) (string, bool) {
	for _, t := range ts {
		if t.Name() == name {
			return t.Value(), true
		}
	}
	return "", false
}

// All returns the values of every tag named name, in event order.
func (ts Tags) All(name string) []string {
	var out []string
	for _, t := range ts {
		if t.Name() == name {
			out = append(out, t.Value())
		}
	}
	return out
}

// Event is an inbound, already-delivered substrate event. Signature
// verification happened upstream, at the relay client (§1 Non-goals); by
// the time an Event reaches this package, Signer is trusted to be the
// identity that actually signed it.
type Event struct {
	ID        string `json:"id"`
	Signature string `json:"sig"`
	Signer    string `json:"pubkey"`
	Kind      int    `json:"kind"`
	CreatedAt int64  `json:"created_at"`
	Tags      Tags   `json:"tags"`
	Content   string `json:"content"`
}

// Decode parses a raw relay-delivered JSON event. The envelope itself
// (id, sig, pubkey, tags, ...) always decodes; Content is opaque to this
// layer and is handed to the engine's content parser unparsed.
func Decode(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// OutgoingEvent is a fully-formed, not-yet-transmitted event handed to the
// Outbox port (C2). It carries everything needed to sign and publish it,
// short of the signing key itself — key custody lives with the outbox's
// concrete implementation, outside the engine's scope.
type OutgoingEvent struct {
	Kind    int
	Tags    Tags
	Content string
}
