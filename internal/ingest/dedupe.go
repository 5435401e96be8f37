package ingest

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Dedupe is an in-process cache of recently-seen event ids, guarding
// against handing the same event to the engine twice when multiple
// relays deliver it. It is a performance cache, never the idempotency
// authority — the Event table in internal/ledgerstore remains that
// (§4.5 "this is a performance cache").
type Dedupe struct {
	cache *lru.Cache[string, struct{}]
}

// NewDedupe sizes the cache to cover one freshness window's worth of
// traffic; callers pick size based on expected request volume.
func NewDedupe(size int) (*Dedupe, error) {
	cache, err := lru.New[string, struct{}](size)
	if err != nil {
		return nil, err
	}
	return &Dedupe{cache: cache}, nil
}

// Seen reports whether id was already observed, recording it as seen
// either way.
func (d *Dedupe) Seen(id string) bool {
	if _, ok := d.cache.Get(id); ok {
		return true
	}
	d.cache.Add(id, struct{}{})
	return false
}
