package binhash

// place attempts the cuckoo insertion described in spec §4.3: land
// (k,v) directly if either candidate bin has a free tail, otherwise
// walk the primary bin's occupants and recursively displace one whose
// own primary bin is the current bin (the "primary-only" policy),
// falling back to the secondary bin, bounded by ttl.
func (t *Table) place(k uint32, v []uint32, ttl int) bool {
	p := t.primaryIndex(k)
	s := t.secondaryIndex(k)

	if t.binArr[p].freeTail() {
		t.binArr[p].insertAt(t.d, k, v)
		return true
	}
	if t.binArr[s].freeTail() {
		t.binArr[s].insertAt(t.d, k, v)
		return true
	}
	if ttl <= 0 {
		return false
	}
	if t.tryDisplace(p, k, v, ttl) {
		return true
	}
	if p != s && t.tryDisplace(s, k, v, ttl) {
		return true
	}
	return false
}

// tryDisplace walks bi's occupants looking for one whose primary bin
// is bi itself (so it is guaranteed a fresh, different secondary
// candidate to retry), swaps (k,v) into its slot, and recursively
// places the displaced occupant. Any occupant tried and abandoned is
// restored exactly, so a failed tryDisplace call leaves bi untouched.
func (t *Table) tryDisplace(bi int, k uint32, v []uint32, ttl int) bool {
	b := &t.binArr[bi]
	n := b.count()

	for slot := 0; slot < n; slot++ {
		ck := b.keys[slot]
		if t.primaryIndex(ck) != bi {
			continue
		}

		savedKeys := b.keys
		var savedData []uint32
		if t.d > 0 {
			savedData = append([]uint32(nil), b.data...)
		}

		cv := make([]uint32, t.d)
		if t.d > 0 {
			b.getData(t.d, slot, cv)
			b.setData(t.d, slot, v)
		}
		b.keys[slot] = k
		b.adjust(t.d, slot)

		if t.place(ck, cv, ttl-1) {
			return true
		}

		b.keys = savedKeys
		if t.d > 0 {
			b.data = savedData
		}
	}

	return false
}

func (t *Table) primaryIndex(k uint32) int {
	return int(binIndex1(k, t.seed, t.nbins))
}

func (t *Table) secondaryIndex(k uint32) int {
	return int(binIndex2(k, t.seed, t.nbins))
}

// ttlFor computes the displacement budget for one insertion: bounded
// by both the configured depth and the current bin count, so a tiny
// table can never be asked to recurse deeper than it has bins.
func (t *Table) ttlFor() int {
	if t.depth < int(t.nbins) {
		return t.depth
	}
	return int(t.nbins)
}
