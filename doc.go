// Package binhash implements a high-density cuckoo hash table keyed
// by uint32, carrying an optional fixed-width payload of 0 to 15
// uint32 words per entry.
//
// Bins hold 16 keys sorted ascending in one 64-byte key array (bins
// are not aligned to cache-line boundaries); a lookup resolves with a
// branchless four-compare search over the primary bin and, on a miss,
// the secondary bin, so a key search reads at most two bins' key
// arrays. Insertion uses bounded
// cuckoo displacement (see place in placement.go) and falls back to
// a resize when displacement can't find room. The reserved key value
// 0xFFFFFFFF is handled through a side channel rather than forbidden,
// so the full 32-bit key space stays usable.
//
// binhash is not safe for concurrent use from multiple goroutines,
// has no persistence, and keeps keys fixed at 32 bits — callers
// needing any of those should layer them on top, the same division
// of responsibility this package's own design takes with the prime
// table and allocator it depends on (see internal/alloc and
// prime.go).
package binhash
