package bpcs

import "math/rand"

// SeedFromPassword sums the byte values of password. The sum wraps at 2^32.
func SeedFromPassword(password string) uint32 {
	var seed uint32
	for i := 0; i < len(password); i++ {
		seed += uint32(password[i])
	}
	return seed
}

// Shuffle reorders blocks in place with a Fisher-Yates shuffle driven by a
// generator seeded with seed. The same seed always yields the same order.
func Shuffle(blocks []BlockPosition, seed uint32) {
	rng := rand.New(rand.NewSource(int64(seed)))
	rng.Shuffle(len(blocks), func(i, j int) {
		blocks[i], blocks[j] = blocks[j], blocks[i]
	})
}
