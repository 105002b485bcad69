package pipeline

import (
	"github.com/Beastly713/bpcs/pkg/bitmap"
	"github.com/Beastly713/bpcs/pkg/bpcs"
	"github.com/Beastly713/bpcs/pkg/format"
)

// CapacityReport describes how much a cover can carry at a threshold.
type CapacityReport struct {
	Width     int `json:"width"`
	Height    int `json:"height"`
	Threshold int `json:"threshold"`

	// Blocks counts every whole block across all channels and bit-planes.
	Blocks   int `json:"blocks"`
	Eligible int `json:"eligible"`

	// MaxBytes is the largest payload, header included.
	MaxBytes int `json:"maxCapacity"`

	// Planes holds eligible blocks per channel (R, G, B) and bit-plane (0..7).
	Planes [bitmap.Channels][bpcs.BitPlanes]int `json:"planes"`
}

// Capacity scores a cover without modifying it.
func Capacity(img *bitmap.Image, cfg Config) (*CapacityReport, error) {
	threshold, err := cfg.threshold()
	if err != nil {
		return nil, err
	}

	a := bpcs.NewAnalysis(img)
	r := &CapacityReport{
		Width:     img.Width,
		Height:    img.Height,
		Threshold: threshold,
		Blocks:    a.Blocks(),
		Planes:    a.PlaneCounts(threshold),
	}
	for _, ch := range r.Planes {
		for _, n := range ch {
			r.Eligible += n
		}
	}
	r.MaxBytes = r.Eligible * bpcs.BlockBits / 8
	return r, nil
}

// SecretRoom is the largest secret that fits when stored under filename.
func (r *CapacityReport) SecretRoom(filename string) int {
	return max(0, r.MaxBytes-format.HeaderSize(filename))
}
