package binhash

// binCap is B, the number of key slots that fill one cache line's
// worth of bytes (A=64 bytes / 4-byte keys).
const binCap = 16

// sentinel is K∞, the reserved key value marking an empty slot. It
// sorts as the largest possible key, which is exactly what lets the
// in-bin search ladder treat "no match, fell off the occupied prefix"
// and "hit a sentinel" identically.
const sentinel uint32 = 0xFFFFFFFF

// bin is one group of binCap key slots (64 bytes of keys), plus D
// data rows holding the payload words column-major: row r, slot i
// holds entry i's r-th payload word. Keeping entry i's words at the
// same column across all D rows means a confirmed hit only has to
// walk D more cache lines, one word read per line, instead of
// touching a single interleaved record that might straddle lines.
// A bin value is the key array plus a slice header for data, and
// bins live in an ordinary Go slice, so a bin's keys are not aligned
// to a cache-line boundary and may straddle two lines.
type bin struct {
	keys [binCap]uint32
	data []uint32 // len == d*binCap, row-major over d rows of binCap words
}

func newBin(d int) *bin {
	b := &bin{}
	for i := range b.keys {
		b.keys[i] = sentinel
	}
	if d > 0 {
		b.data = make([]uint32, d*binCap)
	}
	return b
}

// dataIndex returns the index within b.data of the entry at slot's
// row-th payload word.
func dataIndex(d, row, slot int) int {
	return row*binCap + slot
}

func (b *bin) getData(d, slot int, out []uint32) {
	for r := 0; r < d; r++ {
		out[r] = b.data[dataIndex(d, r, slot)]
	}
}

func (b *bin) setData(d, slot int, in []uint32) {
	for r := 0; r < d; r++ {
		b.data[dataIndex(d, r, slot)] = in[r]
	}
}

func (b *bin) clearData(d, slot int) {
	for r := 0; r < d; r++ {
		b.data[dataIndex(d, r, slot)] = 0
	}
}

// b2u converts a boolean comparison into 0/1 without an explicit
// branch in source form; on amd64 the Go compiler lowers this
// pattern to a conditional move, the same trick crypto/subtle relies
// on for constant-time selection. This is what makes the search
// below "branchless" in the sense the core's design notes require:
// four fixed comparisons, no data-dependent loop.
func b2u(cond bool) uint32 {
	var r uint32
	if cond {
		r = 1
	}
	return r
}

// search performs the specified branchless 4-compare binary search
// over the bin's sorted key array (occupied keys ascending, trailing
// sentinels). It returns the last slot whose key is <= key (slot 0
// if there is none) and whether that slot actually holds key.
func (b *bin) search(key uint32) (idx int, hit bool) {
	i := uint32(0)
	i += b2u(key >= b.keys[i+8]) << 3
	i += b2u(key >= b.keys[i+4]) << 2
	i += b2u(key >= b.keys[i+2]) << 1
	i += b2u(key >= b.keys[i+1]) << 0
	return int(i), b.keys[i] == key
}

// freeTail reports whether the bin has room: if the last slot is
// free, every slot is (the occupied prefix invariant guarantees this).
func (b *bin) freeTail() bool {
	return b.keys[binCap-1] == sentinel
}

// count returns the number of occupied slots in the bin.
func (b *bin) count() int {
	n := 0
	for _, k := range b.keys {
		if k == sentinel {
			break
		}
		n++
	}
	return n
}

func (b *bin) swap(d, i, j int) {
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
	for r := 0; r < d; r++ {
		ii, jj := dataIndex(d, r, i), dataIndex(d, r, j)
		b.data[ii], b.data[jj] = b.data[jj], b.data[ii]
	}
}

// rollLeft restores sort order after a new entry has been written at
// pos (normally the tail) by walking it leftward while its
// predecessor key is strictly greater.
func (b *bin) rollLeft(d, pos int) {
	for pos > 0 && b.keys[pos-1] > b.keys[pos] {
		b.swap(d, pos-1, pos)
		pos--
	}
}

// adjust bubbles the entry at pos one position at a time, left or
// right, until local sort order is restored. Unlike rollLeft (which
// only ever needs to move a freshly appended tail entry leftward),
// adjust is used when an arbitrary mid-bin slot's key just changed
// (cuckoo displacement swaps a new key into an occupant's old slot),
// so the entry may need to move in either direction. Returns the
// entry's final slot.
func (b *bin) adjust(d, pos int) int {
	for pos > 0 && b.keys[pos-1] > b.keys[pos] {
		b.swap(d, pos-1, pos)
		pos--
	}
	for pos < binCap-1 && b.keys[pos+1] < b.keys[pos] {
		b.swap(d, pos, pos+1)
		pos++
	}
	return pos
}

// rollRight pushes a freshly written sentinel (from a delete at pos)
// toward the tail by swapping it rightward with each successive
// occupied neighbor, restoring the contiguous-occupied-prefix
// invariant.
func (b *bin) rollRight(d, pos int) {
	for pos < binCap-1 && b.keys[pos+1] != sentinel {
		b.swap(d, pos, pos+1)
		pos++
	}
}

// insertAt writes (key, value) into the bin's free tail slot and
// restores sorted order. Caller must have verified freeTail().
func (b *bin) insertAt(d int, key uint32, value []uint32) {
	pos := binCap - 1
	b.keys[pos] = key
	if d > 0 {
		b.setData(d, pos, value)
	}
	b.rollLeft(d, pos)
}

// deleteAt clears the slot at pos and restores the contiguous prefix.
func (b *bin) deleteAt(d, pos int) {
	b.keys[pos] = sentinel
	if d > 0 {
		b.clearData(d, pos)
	}
	b.rollRight(d, pos)
}
