package bpcs

import (
	"math/rand"

	"github.com/Beastly713/bpcs/pkg/bitmap"
)

// checkerboard returns an image whose every bit-plane is a checkerboard, so
// every whole block scores MaxComplexity.
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

func noise(w, h int, seed int64) *bitmap.Image {
	rng := rand.New(rand.NewSource(seed))
	img := bitmap.New(w, h)
	for i := range img.Pix {
		img.Pix[i] = bitmap.Pixel{R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)), B: uint8(rng.Intn(256))}
	}
	return img
}

func selectBlocks(img *bitmap.Image, threshold int) []BlockPosition {
	return NewAnalysis(img).Select(threshold)
}
