package relay

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/nostrbank/ledgerd/internal/nostrevent"
)

// stamp derives the event id the way the substrate's own clients do: the
// hex SHA-256 digest of the canonical [0, pubkey, created_at, kind, tags,
// content] serialization. Cryptographic signing of that id is key-custody
// work that belongs to whatever holds the ledger's private key — outside
// this adapter's scope, same as inbound signature verification (§1
// Non-goals) — so Signature is left for that layer to populate before
// transmission reaches a relay that enforces it.
func stamp(signer string, createdAt int64, kind int, tags nostrevent.Tags, content string) (*nostrevent.Event, error) {
	if tags == nil {
		tags = nostrevent.Tags{}
	}
	canonical := []interface{}{0, signer, createdAt, kind, tags, content}
	data, err := json.Marshal(canonical)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(data)

	return &nostrevent.Event{
		ID:        hex.EncodeToString(sum[:]),
		Signer:    signer,
		Kind:      kind,
		CreatedAt: createdAt,
		Tags:      tags,
		Content:   content,
	}, nil
}
