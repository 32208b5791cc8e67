// Package monitor implements the server-side subscription registry and
// callback fan-out: clients register for a bounded number
// of seconds and receive one Callback datagram per successful mutating
// operation until their registration expires.
package monitor

import "sync"

// Entry is one live subscription.
type Entry struct {
	ClientEndpoint string
	ExpiresAt      int64 // unix nanoseconds, so tests can fabricate clock values
}

// Registry holds Entry values in registration order — fan-out must
// observe the order of monitor registration, so
// this is a slice, not a map, unlike internal/dedup's keyed cache.
type Registry struct {
	mu      sync.Mutex
	entries []Entry
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{}
}

// Register appends a new subscription. Multiple registrations from the
// same endpoint are independent entries.
func (r *Registry) Register(clientEndpoint string, expiresAtUnixNano int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{ClientEndpoint: clientEndpoint, ExpiresAt: expiresAtUnixNano})
}

// Prune drops every entry that has expired as of nowUnixNano (swept once
// per server loop iteration).
func (r *Registry) Prune(nowUnixNano int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	live := r.entries[:0]
	for _, e := range r.entries {
		if e.ExpiresAt > nowUnixNano {
			live = append(live, e)
		}
	}
	r.entries = live
}

// Live returns a snapshot of the currently registered entries, in
// registration order, for the caller to fan a callback out to.
func (r *Registry) Live() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len reports the number of live entries, for tests and metrics.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
