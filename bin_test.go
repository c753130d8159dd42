package binhash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinSearchBranchless(t *testing.T) {
	b := newBin(1)
	keys := []uint32{3, 7, 9, 15, 20, 42}
	for i, k := range keys {
		b.keys[i] = k
		b.setData(1, i, []uint32{k * 10})
	}

	for i, k := range keys {
		idx, hit := b.search(k)
		require.True(t, hit, "key %d", k)
		assert.Equal(t, i, idx)
	}

	_, hit := b.search(8)
	assert.False(t, hit)
}

func TestBinInsertKeepsSortedOrder(t *testing.T) {
	b := newBin(0)
	order := []uint32{50, 10, 30, 5, 40, 20}
	for _, k := range order {
		require.True(t, b.freeTail())
		b.insertAt(0, k, nil)
	}

	var prev uint32
	n := b.count()
	assert.Equal(t, len(order), n)
	for i := 0; i < n; i++ {
		if i > 0 {
			assert.Greater(t, b.keys[i], prev)
		}
		prev = b.keys[i]
	}
	for i := n; i < binCap; i++ {
		assert.Equal(t, sentinel, b.keys[i])
	}
}

func TestBinDeleteCompactsPrefix(t *testing.T) {
	b := newBin(0)
	for _, k := range []uint32{1, 2, 3, 4, 5} {
		b.insertAt(0, k, nil)
	}

	idx, hit := b.search(3)
	require.True(t, hit)
	b.deleteAt(0, idx)

	assert.Equal(t, 4, b.count())
	_, hit = b.search(3)
	assert.False(t, hit)
	for i, want := range []uint32{1, 2, 4, 5} {
		assert.Equal(t, want, b.keys[i])
	}
	assert.Equal(t, sentinel, b.keys[4])
}

func TestBinAdjustBothDirections(t *testing.T) {
	b := newBin(0)
	for _, k := range []uint32{5, 10, 20, 30} {
		b.insertAt(0, k, nil)
	}

	// Simulate a mid-bin key substitution the way displacement does:
	// overwrite slot 1 (key 10) with a larger value and let adjust
	// walk it rightward.
	b.keys[1] = 25
	final := b.adjust(0, 1)
	assert.Equal(t, []uint32{5, 20, 25, 30, sentinel}, b.keys[:5])
	assert.Equal(t, 2, final)

	// And a substitution that must walk leftward.
	b.keys[2] = 1
	final = b.adjust(0, 2)
	assert.Equal(t, []uint32{1, 5, 20, 30, sentinel}, b.keys[:5])
	assert.Equal(t, 0, final)
}
