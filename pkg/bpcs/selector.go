package bpcs

import (
	"fmt"

	"github.com/Beastly713/bpcs/pkg/bitmap"
)

var channelNames = [bitmap.Channels]string{"R", "G", "B"}

// BlockPosition addresses one 8x8 block of one bit-plane of one channel.
// X and Y are the top-left pixel of the block.
type BlockPosition struct {
	Channel  int
	BitPlane int
	X        int
	Y        int
}

func (p BlockPosition) String() string {
	return fmt.Sprintf("%s/%d@(%d,%d)", channelNames[p.Channel], p.BitPlane, p.X, p.Y)
}

// Analysis holds the complexity score of every whole block in an image.
// Scoring is the expensive part of both embed and extract, so it is done once
// and shared by selection, capacity reporting and drift checks.
type Analysis struct {
	cols   int
	rows   int
	scores []uint8
}

// NewAnalysis scores every block of img. Trailing columns and rows that do
// not fill a whole block are ignored.
func NewAnalysis(img *bitmap.Image) *Analysis {
	a := &Analysis{
		cols: img.Width / BlockSize,
		rows: img.Height / BlockSize,
	}
	a.scores = make([]uint8, bitmap.Channels*BitPlanes*a.rows*a.cols)

	i := 0
	a.each(func(pos BlockPosition) {
		a.scores[i] = uint8(Complexity(ExtractBlock(img, pos)))
		i++
	})
	return a
}

// each visits every block position in canonical order: channel R, G, B, then
// bit-plane 7 down to 0, then block row, then block column.
func (a *Analysis) each(fn func(BlockPosition)) {
	for ch := 0; ch < bitmap.Channels; ch++ {
		for plane := BitPlanes - 1; plane >= 0; plane-- {
			for by := 0; by < a.rows; by++ {
				for bx := 0; bx < a.cols; bx++ {
					fn(BlockPosition{Channel: ch, BitPlane: plane, X: bx * BlockSize, Y: by * BlockSize})
				}
			}
		}
	}
}

func (a *Analysis) index(pos BlockPosition) int {
	plane := BitPlanes - 1 - pos.BitPlane
	return ((pos.Channel*BitPlanes+plane)*a.rows+pos.Y/BlockSize)*a.cols + pos.X/BlockSize
}

// Blocks is the total number of blocks, eligible or not.
func (a *Analysis) Blocks() int {
	return len(a.scores)
}

// Score returns the complexity recorded for pos.
func (a *Analysis) Score(pos BlockPosition) int {
	return int(a.scores[a.index(pos)])
}

// Select returns every block whose complexity is at least threshold, in
// canonical order. Embed and extract must both use this order.
func (a *Analysis) Select(threshold int) []BlockPosition {
	var out []BlockPosition
	i := 0
	a.each(func(pos BlockPosition) {
		if int(a.scores[i]) >= threshold {
			out = append(out, pos)
		}
		i++
	})
	return out
}

// PlaneCounts returns the number of eligible blocks per channel and bit-plane.
func (a *Analysis) PlaneCounts(threshold int) [bitmap.Channels][BitPlanes]int {
	var counts [bitmap.Channels][BitPlanes]int
	i := 0
	a.each(func(pos BlockPosition) {
		if int(a.scores[i]) >= threshold {
			counts[pos.Channel][pos.BitPlane]++
		}
		i++
	})
	return counts
}
