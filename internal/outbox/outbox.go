// Package outbox defines the engine's publication port (C2): a minimal,
// fire-and-forget sink for outgoing substrate events.
package outbox

import (
	"context"

	"github.com/nostrbank/ledgerd/internal/nostrevent"
)

// Outbox publishes an outgoing event to the substrate. From the engine's
// perspective publication is fire-and-forget (§5): a publish failure is a
// transient condition logged by the caller, never a reason to roll back an
// already-committed mutation.
type Outbox interface {
	Publish(ctx context.Context, ev nostrevent.OutgoingEvent) error
}
