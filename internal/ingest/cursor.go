package ingest

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/nostrbank/ledgerd/internal/storage/kv"
)

// cursorKeyPrefix namespaces checkpoint keys within the shared kv store,
// one per relay URL, so a restart resubscribes each relay from its own
// last-seen high-water mark rather than the oldest of the group.
const cursorKeyPrefix = "ingest/cursor/"

// Cursor persists the last-seen event created_at per relay to an embedded
// kv.DB (§4.5), so a process restart can resubscribe with a "since" no
// older than the last durable checkpoint instead of replaying from zero
// or, worse, missing events delivered during downtime.
type Cursor struct {
	store kv.DB
}

func NewCursor(store kv.DB) *Cursor {
	return &Cursor{store: store}
}

// Since returns the durable checkpoint for relayURL, or fallback if none
// has been recorded yet.
func (c *Cursor) Since(ctx context.Context, relayURL string, fallback int64) int64 {
	val, err := c.store.Read(ctx, cursorKey(relayURL))
	if err != nil {
		return fallback
	}
	if len(val) != 8 {
		return fallback
	}
	return int64(binary.BigEndian.Uint64(val))
}

// Advance records createdAt as relayURL's checkpoint if it is newer than
// what's already stored. Advancing never moves a checkpoint backwards, so
// out-of-order delivery within a single poll can't regress the cursor.
func (c *Cursor) Advance(ctx context.Context, relayURL string, createdAt int64) error {
	current := c.Since(ctx, relayURL, 0)
	if createdAt <= current {
		return nil
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(createdAt))
	if err := c.store.Write(ctx, cursorKey(relayURL), buf); err != nil {
		return fmt.Errorf("ingest: advance cursor for %s: %w", relayURL, err)
	}
	return nil
}

func cursorKey(relayURL string) []byte {
	return []byte(cursorKeyPrefix + relayURL)
}
