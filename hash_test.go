package binhash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Fixed-vector regression check, in the same {name, args, want}
// table-driven shape as the teacher's own hash_test.go (which pins
// murmur3_32/xx_32/mem_32 against known outputs) — pinning h1/h2's
// actual output words guards against an accidental edit to either
// mixer changing its values silently.
func TestHashFixedVectors(t *testing.T) {
	tests := []struct {
		name string
		fn   func(k, seed uint32) uint32
		k    uint32
		seed uint32
		want uint32
	}{
		{"h1/10,0", h1, 10, 0, 1712784324},
		{"h2/10,0", h2, 10, 0, 1520442822},
		{"h1/123,7", h1, 123, 7, 941188557},
		{"h2/123,7", h2, 123, 7, 3412096903},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fn(tt.k, tt.seed))
		})
	}
}

func TestHashMixersDiffer(t *testing.T) {
	assert.NotEqual(t, h1(10, 0), h2(10, 0))
}

func TestHashMixersDeterministic(t *testing.T) {
	assert.Equal(t, h1(123, 7), h1(123, 7))
	assert.Equal(t, h2(123, 7), h2(123, 7))
}

func TestHashAvalanche(t *testing.T) {
	// Flipping a single input bit should flip roughly half the
	// output bits, not a handful, for a reasonable full-avalanche
	// mixer. This is a coarse sanity check, not a statistical proof.
	base := h1(0x12345678, 1)
	flipped := h1(0x12345679, 1)
	diff := base ^ flipped
	bits := popcount(diff)
	assert.Greater(t, bits, 8)
	assert.Less(t, bits, 24)
}

func popcount(x uint32) int {
	n := 0
	for x != 0 {
		n += int(x & 1)
		x >>= 1
	}
	return n
}

func TestBinIndexWithinRange(t *testing.T) {
	const n = uint32(97)
	for k := uint32(0); k < 1000; k++ {
		assert.Less(t, binIndex1(k, 5, n), n)
		assert.Less(t, binIndex2(k, 5, n), n)
	}
}
