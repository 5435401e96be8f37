package httpintro

import "sync/atomic"

// Counters is a tiny set of process-lifetime operational counters,
// incremented by the engine as it processes requests (§6 "HTTP
// introspection").
type Counters struct {
	Processed   atomic.Int64
	Rejected    atomic.Int64
	Retried     atomic.Int64
	Republished atomic.Int64
}
