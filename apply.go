package binhash

// Apply traverses every occupied slot (the K∞ side channel first,
// then every bin in order) and invokes fn with (key, data, aux). The
// callback must not mutate the table: doing so is a contract
// violation, detected by comparing version before and after each
// call, and it aborts the process rather than returning an error —
// per spec §4.9, this is the one case where a bad Apply callback
// can't simply be reported back to the caller, since the traversal
// itself would already be working from a stale bin layout.
func (t *Table) Apply(fn func(key uint32, data []uint32, aux any), aux any) {
	v0 := t.version

	if t.infOccupied {
		fn(sentinel, cloneValue(t.d, t.infData), aux)
		if t.version != v0 {
			t.alloc.Fatalf("binhash: apply: callback mutated the table mid-traversal")
		}
	}

	for i := range t.binArr {
		b := &t.binArr[i]
		n := b.count()
		for slot := 0; slot < n; slot++ {
			var data []uint32
			if t.d > 0 {
				data = make([]uint32, t.d)
				b.getData(t.d, slot, data)
			}
			fn(b.keys[slot], data, aux)
			if t.version != v0 {
				t.alloc.Fatalf("binhash: apply: callback mutated the table mid-traversal")
			}
		}
	}
}
