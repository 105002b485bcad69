package bpcs

import (
	"errors"
	"fmt"
	"math"

	"github.com/Beastly713/bpcs/pkg/bitmap"
)

// ErrZeroDistortion means the stego image is identical to the cover, so
// nothing was hidden.
var ErrZeroDistortion = errors.New("no changes made (PSNR is infinite)")

// Distortion compares a cover with its stego image.
type Distortion struct {
	MSE     float64
	PSNR    float64 // dB
	Changed int     // number of channel samples that differ
}

// MeasureDistortion computes the mean squared error over all three channels
// and PSNR = 20*log10(256/sqrt(MSE)). An MSE of exactly zero is an error.
func MeasureDistortion(original, stego *bitmap.Image) (Distortion, error) {
	if original.Width != stego.Width || original.Height != stego.Height {
		return Distortion{}, fmt.Errorf("image dimensions do not match: %dx%d vs %dx%d",
			original.Width, original.Height, stego.Width, stego.Height)
	}
	if len(original.Pix) == 0 {
		return Distortion{}, errors.New("cannot measure distortion of an empty image")
	}

	var sum float64
	var d Distortion
	for i, a := range original.Pix {
		b := stego.Pix[i]
		for c := 0; c < bitmap.Channels; c++ {
			diff := float64(a.Channel(c)) - float64(b.Channel(c))
			if diff != 0 {
				d.Changed++
			}
			sum += diff * diff
		}
	}

	d.MSE = sum / float64(len(original.Pix)*bitmap.Channels)
	if d.MSE == 0 {
		return d, ErrZeroDistortion
	}
	d.PSNR = 20 * math.Log10(256/math.Sqrt(d.MSE))
	return d, nil
}
