// Package conv provides checked integer conversions and size arithmetic.
//
// Container sizes are computed as elemSize*capacity (+ header). These helpers
// turn silent wrap-around into ErrOverflow so that an absurd capacity is
// reported as an allocation failure instead of producing a short buffer.
//
// For conversions that are provably safe by domain constraints (e.g., loop
// indices, bounded counters), use direct type casts instead.
package conv
