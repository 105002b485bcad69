package pipeline

import (
	"math/rand"

	"github.com/Beastly713/bpcs/pkg/bitmap"
)

// checkerboard returns a cover whose every bit-plane block scores the
// maximum complexity, so every whole block is eligible.
func checkerboard(w, h int) *bitmap.Image {
	img := bitmap.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(0xAA)
			if (x+y)%2 == 1 {
				v = 0x55
			}
			img.Set(x, y, bitmap.Pixel{R: v, G: v, B: v})
		}
	}
	return img
}

// alternating returns n bytes of 0x55, 0xAA, 0x55, ... Written into a block
// these keep its complexity high.
func alternating(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = 0x55
		if i%2 == 1 {
			b[i] = 0xAA
		}
	}
	return b
}

// noise returns a cover of uniformly random pixels, the usual BPCS carrier.
func noise(w, h int, seed int64) *bitmap.Image {
	rng := rand.New(rand.NewSource(seed))
	img := bitmap.New(w, h)
	for i := range img.Pix {
		img.Pix[i] = bitmap.Pixel{R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)), B: uint8(rng.Intn(256))}
	}
	return img
}
