// Package httpintro is the engine's optional HTTP introspection surface
// (§6): a health check and a small set of plain-text counters, served on
// the two routes this system needs rather than a router framework.
package httpintro

import (
	"context"
	"fmt"
	"net/http"
)

// Pinger reports whether the ledger store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RelayCounter reports how many relay connections are currently live.
type RelayCounter interface {
	ConnectedRelays() int
}

// NewHandler builds the /healthz and /metrics handler, following the
// teacher's minimal net/http idiom (cmd/xrpld/main.go) rather than a
// router framework for a two-route surface.
func NewHandler(pinger Pinger, relays RelayCounter, counters *Counters) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := pinger.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, "database unreachable: %v\n", err)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok, relays_connected=%d\n", relays.ConnectedRelays())
	})

	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintf(w, "ledgerd_requests_processed %d\n", counters.Processed.Load())
		fmt.Fprintf(w, "ledgerd_requests_rejected %d\n", counters.Rejected.Load())
		fmt.Fprintf(w, "ledgerd_requests_retried %d\n", counters.Retried.Load())
		fmt.Fprintf(w, "ledgerd_balances_republished %d\n", counters.Republished.Load())
	})

	return mux
}
