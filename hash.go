package binhash

// Two independent 32-bit mixers used to compute a key's primary and
// secondary bin candidates. Both are full-domain integer hashes with
// good avalanche behavior (a one-bit change in the input flips close
// to half the output bits); this matters far more than raw speed
// here, since the entire cuckoo-placement strategy leans on the two
// candidate bins behaving like independent random choices.
//
// h1 is Bob Jenkins' widely used "full avalanche" integer mix; h2 is
// his "half avalanche" variant, cheaper but still
// sufficiently independent of h1 for bucketized cuckoo hashing. Both
// take a seed so a table can be reseeded (e.g. after a rebuild) to
// shake loose an adversarial key pattern, mirroring the teacher's
// seeded-mixer layout in its own hash.go.

func h1(k, seed uint32) uint32 {
	a := k ^ seed
	a = (a + 0x7ed55d16) + (a << 12)
	a = (a ^ 0xc761c23c) ^ (a >> 19)
	a = (a + 0x165667b1) + (a << 5)
	a = (a + 0xd3a2646c) ^ (a << 9)
	a = (a + 0xfd7046c5) + (a << 3)
	a = (a ^ 0xb55a4f09) ^ (a >> 16)
	return a
}

func h2(k, seed uint32) uint32 {
	a := k ^ (seed + 0x9e3779b9)
	a = (a + 0x479ab41d) + (a << 8)
	a = (a ^ 0xe4aa10ce) ^ (a >> 5)
	a = (a + 0x9942f0a6) - (a << 14)
	a = (a ^ 0x5aedd67d) ^ (a >> 3)
	a = (a + 0x17bea992) + (a << 7)
	return a
}

// binIndex1 and binIndex2 return the primary and secondary bin
// indices for key k in a table of n bins, using the table's current
// seed pair.
func binIndex1(k uint32, seed uint32, n uint32) uint32 {
	return h1(k, seed) % n
}

func binIndex2(k uint32, seed uint32, n uint32) uint32 {
	return h2(k, seed) % n
}
