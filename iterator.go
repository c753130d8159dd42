package binhash

import "binhash/internal/alloc"

// IterStatus reports the outcome of an iterator operation.
type IterStatus int

const (
	// IterOK means the cursor sits on a valid entry.
	IterOK IterStatus = iota
	// IterDone means there is no current entry (past the end, or
	// before the first Forward call).
	IterDone
	// IterInvalid means the table mutated since Reset; the caller
	// must Reset before continuing.
	IterInvalid
)

type iterPos struct {
	bi, slot int
	atInf    bool
}

// Iterator performs a linear scan over a Table's live entries,
// version-guarded against concurrent mutation. It holds a
// non-owning back-reference to its table: the caller is responsible
// for not outliving the table, and for calling Close when done so the
// accounting allocator's handle usage stays balanced.
type Iterator struct {
	t       *Table
	version uint64
	pos     iterPos
	started bool
	finished bool
}

// NewIterator creates an iterator over t, already Reset.
func (t *Table) NewIterator() *Iterator {
	_ = alloc.Allocate[byte](t.alloc, alloc.HandleIterator, 1)
	it := &Iterator{t: t}
	it.Reset()
	return it
}

// Close releases the iterator's accounting-allocator handle. An
// iterator must not be used after Close.
func (it *Iterator) Close() {
	alloc.Free[byte](it.t.alloc, alloc.HandleIterator, make([]byte, 1))
}

// Reset captures the table's current version and repositions the
// cursor before the first entry.
func (it *Iterator) Reset() {
	it.version = it.t.version
	it.pos = iterPos{bi: 0, slot: -1}
	it.started = false
	it.finished = false
}

// valid reports whether the table hasn't mutated since Reset.
func (it *Iterator) valid() bool {
	return it.t.version == it.version
}

// Current returns the entry at the cursor, or IterDone if the cursor
// isn't positioned on one (before the first Forward, or past the
// end), or IterInvalid if the table mutated since Reset.
func (it *Iterator) Current() (key uint32, data []uint32, status IterStatus) {
	if !it.valid() {
		return 0, nil, IterInvalid
	}
	if !it.started || it.finished {
		return 0, nil, IterDone
	}
	if it.pos.atInf {
		return sentinel, cloneValue(it.t.d, it.t.infData), IterOK
	}
	b := &it.t.binArr[it.pos.bi]
	var data2 []uint32
	if it.t.d > 0 {
		data2 = make([]uint32, it.t.d)
		b.getData(it.t.d, it.pos.slot, data2)
	}
	return b.keys[it.pos.slot], data2, IterOK
}

// Forward advances the cursor to the next occupied slot, skipping
// empty bins and the trailing sentinels within a bin, and finally
// the K∞ side channel if occupied. It returns IterOK on landing on a
// new entry, IterDone once the scan is exhausted, or IterInvalid if
// the table mutated since Reset (the caller should Reset and
// restart).
func (it *Iterator) Forward() IterStatus {
	if !it.valid() {
		return IterInvalid
	}
	if it.finished {
		return IterDone
	}
	if it.pos.atInf {
		it.finished = true
		return IterDone
	}

	bi, slot := it.pos.bi, it.pos.slot+1
	for bi < len(it.t.binArr) {
		if slot >= binCap || it.t.binArr[bi].keys[slot] == sentinel {
			bi++
			slot = 0
			continue
		}
		it.pos = iterPos{bi: bi, slot: slot}
		it.started = true
		return IterOK
	}

	if it.t.infOccupied {
		it.pos = iterPos{atInf: true}
		it.started = true
		return IterOK
	}

	it.finished = true
	return IterDone
}
