package binhash

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(t *Table) map[uint32][]uint32 {
	out := make(map[uint32][]uint32)
	t.Apply(func(k uint32, d []uint32, aux any) {
		out[k] = append([]uint32(nil), d...)
	}, nil)
	return out
}

// S1: sentinel handling.
func TestSentinelHandling(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Data = 0
	tbl, err := New(cfg)
	require.NoError(t, err)
	defer tbl.Destroy()

	assert.True(t, tbl.Insert(sentinel, nil))
	assert.False(t, tbl.Insert(sentinel, nil))

	_, ok := tbl.Lookup(sentinel)
	assert.True(t, ok)

	assert.True(t, tbl.Delete(sentinel))
	_, ok = tbl.Lookup(sentinel)
	assert.False(t, ok)
	assert.Equal(t, 0, tbl.Keys())
}

// S2: basic CRUD.
func TestBasicCRUD(t *testing.T) {
	tbl, err := New(DefaultConfig())
	require.NoError(t, err)
	defer tbl.Destroy()

	require.True(t, tbl.Insert(7, []uint32{42}))
	v, ok := tbl.Lookup(7)
	require.True(t, ok)
	assert.Equal(t, []uint32{42}, v)

	require.True(t, tbl.Update(7, []uint32{99}))
	v, ok = tbl.Lookup(7)
	require.True(t, ok)
	assert.Equal(t, []uint32{99}, v)

	require.True(t, tbl.Delete(7))
	_, ok = tbl.Lookup(7)
	assert.False(t, ok)
}

const growSize = 10000

func buildGrown(t *testing.T, lower float64) (*Table, Config) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Start = 10
	cfg.Upper = 0.95
	cfg.Lower = lower
	tbl, err := New(cfg)
	require.NoError(t, err)
	for k := uint32(1); k <= growSize; k++ {
		require.True(t, tbl.Insert(k, []uint32{^k}), "insert %d", k)
	}
	return tbl, cfg
}

// S3: grow.
func TestGrow(t *testing.T) {
	tbl, cfg := buildGrown(t, 0)
	defer tbl.Destroy()

	for k := uint32(1); k <= growSize; k++ {
		v, ok := tbl.Lookup(k)
		require.True(t, ok, "lookup %d", k)
		assert.Equal(t, []uint32{^k}, v)
	}

	assert.Equal(t, growSize, tbl.Keys())
	fill := float64(tbl.Keys()) / float64(tbl.Bins()*binCap)
	assert.LessOrEqual(t, fill, cfg.Upper)
}

// S4: shrink.
func TestShrink(t *testing.T) {
	tbl, cfg := buildGrown(t, 0.05)
	defer tbl.Destroy()

	keys := make([]uint32, growSize)
	for i := range keys {
		keys[i] = uint32(i + 1)
	}
	rng := rand.New(rand.NewSource(1))
	rng.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })

	for _, k := range keys[:9500] {
		require.True(t, tbl.Delete(k), "delete %d", k)
	}

	assert.Equal(t, growSize-9500, tbl.Keys())
	fill := float64(tbl.Keys()) / float64(tbl.Bins()*binCap)
	assert.GreaterOrEqual(t, fill, cfg.Lower)

	for _, k := range keys[9500:] {
		v, ok := tbl.Lookup(k)
		require.True(t, ok, "lookup %d", k)
		assert.Equal(t, []uint32{^k}, v)
	}
}

// S5: rebuild.
func TestRebuild(t *testing.T) {
	tbl, _ := buildGrown(t, 0)
	defer tbl.Destroy()

	beforeBins := tbl.Bins()
	before := snapshot(tbl)

	require.NoError(t, tbl.Rebuild(1.0))

	assert.Equal(t, growSize, tbl.Keys())
	after := snapshot(tbl)
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("rebuild changed (key,data) contents: %s", diff)
	}
	assert.LessOrEqual(t, tbl.Bins(), beforeBins)

	for k := uint32(1); k <= growSize; k++ {
		v, ok := tbl.Lookup(k)
		require.True(t, ok)
		assert.Equal(t, []uint32{^k}, v)
	}
}

// S6: iterator invalidation.
func TestIteratorInvalidation(t *testing.T) {
	tbl, err := New(DefaultConfig())
	require.NoError(t, err)
	defer tbl.Destroy()

	require.True(t, tbl.Insert(1, []uint32{1}))
	require.True(t, tbl.Insert(2, []uint32{2}))

	it := tbl.NewIterator()
	defer it.Close()
	require.Equal(t, IterOK, it.Forward())

	require.True(t, tbl.Insert(3, []uint32{3}))

	_, _, status := it.Current()
	assert.Equal(t, IterInvalid, status)

	it.Reset()
	_, _, status = it.Current()
	assert.Equal(t, IterDone, status)

	require.Equal(t, IterOK, it.Forward())
	_, _, status = it.Current()
	assert.Equal(t, IterOK, status)
}

func TestIteratorCoverage(t *testing.T) {
	tbl, err := New(DefaultConfig())
	require.NoError(t, err)
	defer tbl.Destroy()

	want := make(map[uint32]bool)
	for k := uint32(1); k <= 200; k++ {
		require.True(t, tbl.Insert(k, []uint32{k}))
		want[k] = true
	}
	require.True(t, tbl.Insert(sentinel, []uint32{0xff}))
	want[sentinel] = true

	it := tbl.NewIterator()
	defer it.Close()

	got := make(map[uint32]bool)
	for it.Forward() == IterOK {
		k, _, status := it.Current()
		require.Equal(t, IterOK, status)
		got[k] = true
	}
	assert.Equal(t, want, got)
	assert.Equal(t, tbl.Keys(), len(got))
}

func TestCloneIndependence(t *testing.T) {
	tbl, err := New(DefaultConfig())
	require.NoError(t, err)
	defer tbl.Destroy()

	require.True(t, tbl.Insert(1, []uint32{100}))
	clone := tbl.Clone()
	defer clone.Destroy()

	require.True(t, clone.Insert(2, []uint32{200}))
	_, ok := tbl.Lookup(2)
	assert.False(t, ok)

	require.True(t, tbl.Delete(1))
	v, ok := clone.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, []uint32{100}, v)
}

func TestUpdateIdempotent(t *testing.T) {
	tbl, err := New(DefaultConfig())
	require.NoError(t, err)
	defer tbl.Destroy()

	require.True(t, tbl.Insert(5, []uint32{1}))
	require.True(t, tbl.Update(5, []uint32{2}))
	v, ok := tbl.Lookup(5)
	require.True(t, ok)
	assert.Equal(t, []uint32{2}, v)

	require.True(t, tbl.Update(5, []uint32{2}))
	v, ok = tbl.Lookup(5)
	require.True(t, ok)
	assert.Equal(t, []uint32{2}, v)
}

func TestVersionMonotonic(t *testing.T) {
	tbl, err := New(DefaultConfig())
	require.NoError(t, err)
	defer tbl.Destroy()

	v0 := tbl.Version()
	require.True(t, tbl.Insert(1, []uint32{1}))
	assert.Greater(t, tbl.Version(), v0)

	v1 := tbl.Version()
	_ = tbl.Insert(1, []uint32{1}) // refused, no mutation
	assert.Equal(t, v1, tbl.Version())
}

func TestConfigValidation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Lower = 0.5
	cfg.Upper = 0.5
	_, err := New(cfg)
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.Data = 16
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestStats(t *testing.T) {
	tbl, err := New(DefaultConfig())
	require.NoError(t, err)
	defer tbl.Destroy()

	for k := uint32(1); k <= 500; k++ {
		require.True(t, tbl.Insert(k, []uint32{k}))
	}
	s := tbl.Stats()
	total := 0
	for occ, n := range s.Hist {
		total += occ * n
	}
	assert.Equal(t, 500, total)
	assert.LessOrEqual(t, s.Primary, 500)
}
