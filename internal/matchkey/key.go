// Package matchkey derives the canonical, order-independent identity of
// a user pair. The key is the uniqueness anchor for the matches table:
// both members map to the same key regardless of who swiped first.
package matchkey

import "strconv"

// Key returns the canonical pair key for two distinct users: the two
// decimal id strings sorted lexicographically and joined with "_".
//
// A pair without exactly two distinct members is a programming-contract
// violation, not a recoverable input error, so Key panics on a == b.
func Key(a, b uint64) string {
	if a == b {
		panic("matchkey: pair must contain two distinct users")
	}
	sa := strconv.FormatUint(a, 10)
	sb := strconv.FormatUint(b, 10)
	if sa > sb {
		sa, sb = sb, sa
	}
	return sa + "_" + sb
}

// Members returns the two ids in key order (first, second), matching
// the order their decimal forms appear in Key(a, b).
func Members(a, b uint64) (uint64, uint64) {
	if strconv.FormatUint(a, 10) > strconv.FormatUint(b, 10) {
		return b, a
	}
	return a, b
}
