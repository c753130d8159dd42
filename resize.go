package binhash

import (
	"fmt"
	"math"

	"binhash/internal/alloc"
)

// pendingEntry carries a key/value pair across a resize, either one
// already resident in the old bins or the triggering insert that
// couldn't be placed.
type pendingEntry struct {
	key  uint32
	data []uint32
}

// collectLive gathers every bin-resident entry (the K∞ side channel
// is untouched by resize; it lives outside the bin array).
func (t *Table) collectLive() []pendingEntry {
	entries := make([]pendingEntry, 0, t.keysCount)
	for i := range t.binArr {
		b := &t.binArr[i]
		n := b.count()
		for s := 0; s < n; s++ {
			var v []uint32
			if t.d > 0 {
				v = make([]uint32, t.d)
				b.getData(t.d, s, v)
			}
			entries = append(entries, pendingEntry{key: b.keys[s], data: v})
		}
	}
	return entries
}

// buildAt swaps t onto a freshly allocated nbins-sized bin array
// (prime index prix) and tries to place every entry plus the
// optional extra one. On success the old array has already been
// freed and t is left pointing at the new one. On failure t is
// restored to exactly its prior state and the attempted array is
// freed, as if buildAt had never run — mirroring the teacher's
// build-into-a-shadow-struct-then-swap-or-discard pattern in its own
// tryGrow.
func (t *Table) buildAt(prix int, entries []pendingEntry, extra *pendingEntry) bool {
	savedBins, savedPrix, savedNbins, savedSeed := t.binArr, t.prix, t.nbins, t.seed

	nbins := prime(prix)
	newBins := alloc.Allocate[bin](t.alloc, alloc.HandleBinArray, int(nbins))
	for i := range newBins {
		initBin(&newBins[i], t.d)
	}

	t.binArr = newBins
	t.prix = prix
	t.nbins = nbins
	t.seed = t.reseed()

	ttl := t.ttlFor()
	ok := true
	for _, e := range entries {
		if !t.place(e.key, e.data, ttl) {
			ok = false
			break
		}
	}
	if ok && extra != nil {
		ok = t.place(extra.key, extra.data, ttl)
	}

	if ok {
		alloc.Free[bin](t.alloc, alloc.HandleBinArray, savedBins)
		return true
	}

	alloc.Free[bin](t.alloc, alloc.HandleBinArray, newBins)
	t.binArr, t.prix, t.nbins, t.seed = savedBins, savedPrix, savedNbins, savedSeed
	return false
}

// recomputeMinMax rebuilds the observed-extrema pair from scratch
// over entries (+extra, +the K∞ side channel if occupied). This is
// the "reset" spec §4.7 describes: after a resize/rebuild, min/max
// reflect the keys actually present, and then go stale again as
// deletions accumulate.
func (t *Table) recomputeMinMax(entries []pendingEntry, extra *pendingEntry) {
	has := false
	var mn, mx uint32
	consider := func(k uint32) {
		if !has {
			mn, mx, has = k, k, true
			return
		}
		if k < mn {
			mn = k
		}
		if k > mx {
			mx = k
		}
	}
	for _, e := range entries {
		consider(e.key)
	}
	if extra != nil {
		consider(extra.key)
	}
	if t.infOccupied {
		consider(sentinel)
	}
	if has {
		t.min, t.max = mn, mx
	} else {
		t.min, t.max = sentinel, 0
	}
}

// grow is entered when an insertion's projected fill would exceed
// upper, or an actual placement attempt failed. It escalates the
// prime index with a randomized factor so repeated grow failures
// (an adversarial key pattern hash-colliding at a given bin count)
// don't retry the exact same size twice; see spec §4.6 and §9's
// "randomized resize" design note.
func (t *Table) grow(extra *pendingEntry) {
	entries := t.collectLive()

	for try := 1; ; try++ {
		factor := t.growth + float64(try)*t.attempt + t.random*t.rng.float64()
		newPrix := t.prix + try
		if byFactor := int(float64(t.prix) * factor); byFactor > newPrix {
			newPrix = byFactor
		}
		if newPrix >= len(primeTable) {
			newPrix = len(primeTable) - 1
		}

		if t.buildAt(newPrix, entries, extra) {
			t.keysCount++
			t.recomputeMinMax(entries, extra)
			t.version++
			return
		}

		if newPrix == len(primeTable)-1 && try > len(primeTable) {
			// Exhausted the prime table at its ceiling; nothing more
			// to escalate to. This only happens at pathological
			// scale, far past any practical key count.
			t.alloc.Fatalf("binhash: grow: exhausted prime table while inserting")
		}
	}
}

// shrink triggers after a deletion when both keys > binCap and the
// fill ratio has dropped below lower. It targets the midpoint of
// [lower,upper], picks the smallest prime index that achieves that
// target fill, and never raises prix above its pre-shrink value.
func (t *Table) shrink() {
	if t.keysCount <= binCap {
		return
	}
	fill := float64(t.keysCount) / float64(uint64(t.nbins)*binCap)
	if fill >= t.lower {
		return
	}

	target := (t.upper + t.lower) / 2
	if target <= 0 {
		return
	}

	minBins := uint32(math.Ceil(float64(t.keysCount) / (target * binCap)))
	if minBins < 1 {
		minBins = 1
	}
	startPrix := primeCeilIndex(minBins)
	if startPrix >= t.prix {
		return
	}

	entries := t.collectLive()
	for prix := startPrix; prix < t.prix; prix++ {
		if t.buildAt(prix, entries, nil) {
			t.recomputeMinMax(entries, nil)
			t.version++
			return
		}
	}
}

// Rebuild rehashes the table to the smallest bin count achieving the
// given fill ratio (0.01..1.0), freeing as much memory as possible
// after a bulk-load phase. The multiset of (key,data) pairs is
// invariant under Rebuild; only bin count, seed, the observed
// min/max, and version change.
func (t *Table) Rebuild(ratio float64) error {
	if ratio < 0.01 || ratio > 1.0 {
		return fmt.Errorf("binhash: rebuild: ratio must be in [0.01,1.0], got %v", ratio)
	}

	entries := t.collectLive()
	targetKeys := float64(len(entries)) / ratio
	minBins := uint32(math.Ceil(targetKeys / binCap))
	if minBins < 1 {
		minBins = 1
	}
	startPrix := primeCeilIndex(minBins)

	for prix := startPrix; prix < len(primeTable); prix++ {
		if t.buildAt(prix, entries, nil) {
			t.recomputeMinMax(entries, nil)
			t.version++
			return nil
		}
	}

	return fmt.Errorf("binhash: rebuild: exhausted prime table without finding a placement")
}
