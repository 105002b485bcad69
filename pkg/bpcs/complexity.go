// Package bpcs implements Bit-Plane Complexity Segmentation over 24-bit images:
// block scoring, eligible-block selection, password-seeded ordering and the
// bit-level embed/extract engine.
package bpcs

import (
	"math/bits"

	"github.com/Beastly713/bpcs/pkg/bitmap"
)

const (
	// BlockSize is the edge length of a block in pixels.
	BlockSize = 8

	// BlockBits is the number of payload bits a single block carries.
	BlockBits = BlockSize * BlockSize

	// BitPlanes is the number of bit-planes per colour channel.
	BitPlanes = 8

	// MaxComplexity is the border length of an 8x8 checkerboard.
	MaxComplexity = 2 * BlockSize * (BlockSize - 1)

	// DefaultThreshold is the minimum complexity a block needs to carry data.
	DefaultThreshold = 34
)

const (
	// horizontal neighbours that sit in the same row
	rowPairs = 0x7f7f7f7f7f7f7f7f
	// vertical neighbours, i.e. everything but the last row
	colPairs = 0x00ffffffffffffff
)

// Block is an 8x8 binary matrix. Cell (row, col) lives at bit 63-(8*row+col),
// so the most significant byte is the top row and a block reads like 8 bytes
// of an MSB-first bitstream.
type Block uint64

// Cell reports the bit at (row, col).
func (b Block) Cell(row, col int) uint8 {
	return uint8(b>>(63-(row*BlockSize+col))) & 1
}

// Complexity counts the 0/1 borders in b: horizontal transitions between
// adjacent columns plus vertical transitions between adjacent rows.
func Complexity(b Block) int {
	v := uint64(b)
	horizontal := bits.OnesCount64((v ^ (v >> 1)) & rowPairs)
	vertical := bits.OnesCount64((v ^ (v >> BlockSize)) & colPairs)
	return horizontal + vertical
}

// ExtractBlock reads the 8x8 binary block at pos from img.
func ExtractBlock(img *bitmap.Image, pos BlockPosition) Block {
	shift := uint(7 - pos.BitPlane)
	var b uint64
	for row := 0; row < BlockSize; row++ {
		base := (pos.Y+row)*img.Width + pos.X
		for col := 0; col < BlockSize; col++ {
			bit := (img.Pix[base+col].Channel(pos.Channel) >> shift) & 1
			b = b<<1 | uint64(bit)
		}
	}
	return Block(b)
}

// WriteBlock stores b into the bit-plane of every pixel covered by pos.
func WriteBlock(img *bitmap.Image, pos BlockPosition, b Block) {
	shift := uint(7 - pos.BitPlane)
	mask := uint8(1) << shift
	for row := 0; row < BlockSize; row++ {
		base := (pos.Y+row)*img.Width + pos.X
		for col := 0; col < BlockSize; col++ {
			p := &img.Pix[base+col]
			v := p.Channel(pos.Channel)&^mask | b.Cell(row, col)<<shift
			p.SetChannel(pos.Channel, v)
		}
	}
}
