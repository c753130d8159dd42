package binhash

import "fmt"

// Stats is the histogram report described in spec §6: a count of
// bins by occupancy, and the number of live keys residing in their
// own primary bin (a proxy for how often a lookup resolves in a
// single cache-line touch instead of two).
type Stats struct {
	Hist    [binCap + 1]int
	Primary int
}

// Stats computes a fresh occupancy report by scanning every bin
// once. It does not mutate the table or bump version.
func (t *Table) Stats() Stats {
	var s Stats
	for i := range t.binArr {
		b := &t.binArr[i]
		n := b.count()
		s.Hist[n]++
		for slot := 0; slot < n; slot++ {
			if t.primaryIndex(b.keys[slot]) == i {
				s.Primary++
			}
		}
	}
	return s
}

// String renders the histogram for operator-facing output (e.g. the
// binhashctl stats command); it carries no semantics beyond Stats
// itself.
func (s Stats) String() string {
	out := fmt.Sprintf("primary=%d\n", s.Primary)
	for occ, n := range s.Hist {
		if n == 0 {
			continue
		}
		out += fmt.Sprintf("  bins with %2d entries: %d\n", occ, n)
	}
	return out
}
