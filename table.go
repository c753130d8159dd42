package binhash

import "binhash/internal/alloc"

// Table is a bucketized cuckoo hash table keyed by uint32,
// with an optional fixed-width uint32 payload per entry. It is not
// safe for concurrent use; callers sharing a Table across goroutines
// must provide their own mutual exclusion, same as a built-in map.
type Table struct {
	binArr []bin
	prix   int
	nbins  uint32

	keysCount int
	d         int
	depth     int

	lower, upper   float64
	growth, attempt, random float64

	min, max uint32
	version  uint64

	infOccupied bool
	infData     []uint32

	seed uint32
	rng  *xorshiftRand

	alloc *alloc.Allocator
}

// New creates a Table from cfg. The returned Table owns an internal
// accounting allocator; call Destroy when done with it so the
// allocator's leak check can run.
func New(cfg Config) (*Table, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	prix := primeCeilIndex(ceilDiv(cfg.Start, binCap))

	a := alloc.New(nil)
	a.Register(alloc.HandleTable, 1)
	a.Register(alloc.HandleBinArray, 1)
	a.Register(alloc.HandleIterator, 1)

	_ = alloc.Allocate[byte](a, alloc.HandleTable, tableHandleUnits)

	t := &Table{
		prix:    prix,
		nbins:   prime(prix),
		d:       cfg.Data,
		depth:   cfg.Depth,
		lower:   cfg.Lower,
		upper:   cfg.Upper,
		growth:  cfg.Growth,
		attempt: cfg.Attempt,
		random:  cfg.Random,
		min:     sentinel,
		max:     0,
		alloc:   a,
		rng:     newXorshiftRand(),
	}
	t.seed = t.reseed()

	t.binArr = alloc.Allocate[bin](a, alloc.HandleBinArray, int(t.nbins))
	for i := range t.binArr {
		initBin(&t.binArr[i], t.d)
	}

	return t, nil
}

func initBin(b *bin, d int) {
	for i := range b.keys {
		b.keys[i] = sentinel
	}
	if d > 0 {
		b.data = make([]uint32, d*binCap)
	}
}

func ceilDiv(a uint32, b int) uint32 {
	bb := uint32(b)
	if a == 0 {
		return 1
	}
	return (a + bb - 1) / bb
}

// Destroy returns the table's bins to the accounting allocator and
// runs the allocator's leak check. A Table must not be used after
// Destroy.
func (t *Table) Destroy() {
	alloc.Free[bin](t.alloc, alloc.HandleBinArray, t.binArr)
	alloc.Free[byte](t.alloc, alloc.HandleTable, make([]byte, tableHandleUnits))
	t.binArr = nil
	t.alloc.Close()
}

// tableHandleUnits is an arbitrary fixed unit size for the table
// structure handle; the accounting allocator only needs a
// registered, non-zero size per handle, not the Table type's actual
// byte layout.
const tableHandleUnits = 1

// Clone returns a deep copy of t: its own bin array, its own
// side-channel payload, no shared substructure with the original.
// Mutating the clone never affects t and vice versa.
func (t *Table) Clone() *Table {
	a := alloc.New(nil)
	a.Register(alloc.HandleTable, 1)
	a.Register(alloc.HandleBinArray, 1)
	a.Register(alloc.HandleIterator, 1)
	_ = alloc.Allocate[byte](a, alloc.HandleTable, tableHandleUnits)

	c := &Table{
		prix:        t.prix,
		nbins:       t.nbins,
		keysCount:   t.keysCount,
		d:           t.d,
		depth:       t.depth,
		lower:       t.lower,
		upper:       t.upper,
		growth:      t.growth,
		attempt:     t.attempt,
		random:      t.random,
		min:         t.min,
		max:         t.max,
		version:     0,
		infOccupied: t.infOccupied,
		seed:        t.seed,
		rng:         newXorshiftRand(),
		alloc:       a,
	}
	if t.infOccupied && t.d > 0 {
		c.infData = append([]uint32(nil), t.infData...)
	}

	c.binArr = alloc.Allocate[bin](a, alloc.HandleBinArray, int(t.nbins))
	for i := range c.binArr {
		c.binArr[i].keys = t.binArr[i].keys
		if t.d > 0 {
			c.binArr[i].data = append([]uint32(nil), t.binArr[i].data...)
		}
	}

	return c
}

// locate finds k's slot in its primary or secondary bin. ok is false
// if k is not present (the caller must not look up the sentinel key
// this way; it has its own side channel).
func (t *Table) locate(k uint32) (binIdx, slot int, ok bool) {
	p := t.primaryIndex(k)
	if idx, hit := t.binArr[p].search(k); hit {
		return p, idx, true
	}
	s := t.secondaryIndex(k)
	if idx, hit := t.binArr[s].search(k); hit {
		return s, idx, true
	}
	return 0, 0, false
}

func cloneValue(d int, v []uint32) []uint32 {
	if d == 0 {
		return nil
	}
	out := make([]uint32, d)
	copy(out, v)
	return out
}

// Insert adds (k,v). It returns false without mutating the table if
// k is already present (Insert never overwrites; use Update for
// that). len(v) must equal the table's configured data width (it may
// be nil/empty when that width is 0).
func (t *Table) Insert(k uint32, v []uint32) bool {
	if len(v) != t.d {
		t.alloc.Fatalf("binhash: insert: value length %d does not match configured data width %d", len(v), t.d)
	}

	if k == sentinel {
		if t.infOccupied {
			return false
		}
		t.infData = cloneValue(t.d, v)
		t.infOccupied = true
		t.keysCount++
		t.touchMinMax(k)
		t.version++
		return true
	}

	if _, _, hit := t.locate(k); hit {
		return false
	}

	projected := float64(t.keysCount+1) / float64(uint64(t.nbins)*binCap)
	if projected > t.upper {
		t.grow(&pendingEntry{key: k, data: cloneValue(t.d, v)})
		return true
	}

	if t.place(k, cloneValue(t.d, v), t.ttlFor()) {
		t.keysCount++
		t.touchMinMax(k)
		t.version++
		return true
	}

	t.grow(&pendingEntry{key: k, data: cloneValue(t.d, v)})
	return true
}

// touchMinMax folds k into the observed extrema. It only ever widens
// the [min,max] range (lower min, higher max); resize/rebuild is what
// refreshes them to the keys actually present.
func (t *Table) touchMinMax(k uint32) {
	if t.keysCount == 1 {
		t.min, t.max = k, k
		return
	}
	if k < t.min {
		t.min = k
	}
	if k > t.max {
		t.max = k
	}
}

// Delete removes k, if present.
func (t *Table) Delete(k uint32) bool {
	if k == sentinel {
		if !t.infOccupied {
			return false
		}
		t.infOccupied = false
		t.infData = nil
		t.keysCount--
		t.version++
		t.afterDelete()
		return true
	}

	bi, slot, ok := t.locate(k)
	if !ok {
		return false
	}

	t.binArr[bi].deleteAt(t.d, slot)
	t.keysCount--
	t.version++
	t.afterDelete()
	return true
}

func (t *Table) afterDelete() {
	if t.keysCount == 0 {
		t.min, t.max = sentinel, 0
		return
	}
	t.shrink()
}

// Lookup returns k's data and true if present.
func (t *Table) Lookup(k uint32) ([]uint32, bool) {
	if k == sentinel {
		if !t.infOccupied {
			return nil, false
		}
		return cloneValue(t.d, t.infData), true
	}

	bi, slot, ok := t.locate(k)
	if !ok {
		return nil, false
	}
	if t.d == 0 {
		return nil, true
	}
	out := make([]uint32, t.d)
	t.binArr[bi].getData(t.d, slot, out)
	return out, true
}

// Update overwrites k's data in place. It returns false if k is
// absent. A second identical Update is a no-op on content (though it
// still bumps version, matching the spec's mutation-tracking
// contract).
func (t *Table) Update(k uint32, v []uint32) bool {
	if len(v) != t.d {
		t.alloc.Fatalf("binhash: update: value length %d does not match configured data width %d", len(v), t.d)
	}

	if k == sentinel {
		if !t.infOccupied {
			return false
		}
		t.infData = cloneValue(t.d, v)
		t.version++
		return true
	}

	bi, slot, ok := t.locate(k)
	if !ok {
		return false
	}
	if t.d > 0 {
		t.binArr[bi].setData(t.d, slot, v)
	}
	t.version++
	return true
}

// Min returns the smallest key observed since the last rebuild. It
// may name a key no longer present (deletion never tightens it).
func (t *Table) Min() (uint32, bool) {
	if t.keysCount == 0 {
		return 0, false
	}
	return t.min, true
}

// Max returns the largest key observed since the last rebuild, with
// the same staleness caveat as Min.
func (t *Table) Max() (uint32, bool) {
	if t.keysCount == 0 {
		return 0, false
	}
	return t.max, true
}

// Keys returns the number of stored entries, including K∞ if present.
func (t *Table) Keys() int {
	return t.keysCount
}

// Bins returns the current number of bins, N.
func (t *Table) Bins() int {
	return int(t.nbins)
}

// Version returns the monotone mutation counter. Iterators capture
// this at reset time and compare against it on every subsequent call.
func (t *Table) Version() uint64 {
	return t.version
}

// reseed draws a fresh mixer seed. Resize/rebuild reseed the table so
// an adversarial key pattern that caused repeated grow failures
// doesn't immediately reproduce the same collisions at the new size.
func (t *Table) reseed() uint32 {
	return t.rng.next()
}
