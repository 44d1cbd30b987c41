// Package growth implements the fixed linear capacity policy shared by all
// pak containers.
//
// Capacity grows and shrinks by the same increment (the rate, fixed at
// creation). Expansion fires when a container is full; contraction only
// fires once the count has dropped more than one full increment below the
// capacity. The gap between the two triggers is a hysteresis band that keeps
// a push/pop sequence near a boundary from resizing on every call.
//
//	capacity ─────────────────────────────┐  push when count == capacity: expand
//	                                      │
//	capacity - rate ──────────────────────┤  pop until count < capacity - rate:
//	                                      │  contract
//	floor = min(rate, capacity) ──────────┘  contraction never goes below this
package growth

import (
	"github.com/hupe1980/pak/internal/conv"
)

// Policy is a linear growth policy.
type Policy struct {
	rate int
}

// New returns a policy with the given rate. A rate below 1 is treated as 1.
func New(rate int) Policy {
	if rate < 1 {
		rate = 1
	}
	return Policy{rate: rate}
}

// Rate returns the growth increment.
func (p Policy) Rate() int {
	return p.rate
}

// Expand returns the capacity after one expansion step.
func (p Policy) Expand(capacity int) (int, error) {
	return conv.Add(capacity, p.rate)
}

// Floor returns the smallest capacity contraction may produce from capacity.
func (p Policy) Floor(capacity int) int {
	return max(min(p.rate, capacity), 1)
}

// Contract returns the capacity after one contraction step, clamped to Floor.
func (p Policy) Contract(capacity int) int {
	return max(capacity-p.rate, p.Floor(capacity))
}

// ShouldContract reports whether count is below the hysteresis threshold and
// a contraction step would actually shrink the capacity.
func (p Policy) ShouldContract(count, capacity int) bool {
	return count < capacity-p.rate && p.Contract(capacity) < capacity
}
