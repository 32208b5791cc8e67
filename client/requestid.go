package client

import "lukechampine.com/frand"

// nextRequestID returns a fresh non-negative 64-bit nonce. frand is a
// fast userspace CSPRNG seeded from the OS, so
// unlike a plain time-seeded math/rand generator this can't repeat across
// processes started in the same clock tick, which is what the source's
// abs(rand.long) scheme was vulnerable to within a dedup window.
func nextRequestID() uint64 {
	return frand.Uint64n(1 << 63)
}
