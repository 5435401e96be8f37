package nostrevent

import (
	"encoding/json"
	"fmt"
)

// Filter is a NIP-01-shaped subscription filter sent to relays as the
// trailing elements of a ["REQ", subID, filter...] frame.
type Filter struct {
	Kinds []int               `json:"kinds,omitempty"`
	Tags  map[string][]string `json:"-"` // rendered as "#p", "#t", ... below
	Since *int64              `json:"since,omitempty"`
}

// MarshalJSON renders the single-letter tag filters ("#p", "#t", ...) the
// substrate expects alongside the fixed fields.
func (f Filter) MarshalJSON() ([]byte, error) {
	m := map[string]interface{}{}
	if len(f.Kinds) > 0 {
		m["kinds"] = f.Kinds
	}
	if f.Since != nil {
		m["since"] = *f.Since
	}
	for k, v := range f.Tags {
		m[fmt.Sprintf("#%s", k)] = v
	}
	return json.Marshal(m)
}
