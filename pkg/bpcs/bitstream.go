package bpcs

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/Beastly713/bpcs/pkg/bitmap"
)

const blockBytes = BlockBits / 8

// ErrStreamExhausted is returned when a read runs past the last selected block.
var ErrStreamExhausted = errors.New("bitstream exhausted: no more eligible blocks")

// ErrSelectionDrift means writing data lowered a block below the threshold.
// The extractor would no longer select it and every later bit would shift.
var ErrSelectionDrift = errors.New("embedded block fell below complexity threshold")

// Embed writes data into the selected blocks of img, in order. Bits are taken
// MSB-first; each block takes the next 64 bits in row-major cell order and the
// final block may be only partly overwritten. It returns the blocks it touched.
func Embed(img *bitmap.Image, blocks []BlockPosition, data []byte) ([]BlockPosition, error) {
	if err := CheckCapacity(blocks, len(data)*8); err != nil {
		return nil, err
	}

	used := (len(data) + blockBytes - 1) / blockBytes
	for i := 0; i < used; i++ {
		writeChunk(img, blocks[i], chunk(data, i))
	}
	return blocks[:used], nil
}

// EmbedSkipping is Embed for blocks in canonical order. A block that falls
// below threshold once written is left as it is, since the extractor will not
// select it again, and its chunk moves on to the next block.
//
// A whole 64-bit chunk scores the same in every block, so a chunk that is
// itself below threshold fails with ErrSelectionDrift before img is touched.
// Only the final, partial chunk depends on the cover bits it leaves behind.
func EmbedSkipping(img *bitmap.Image, blocks []BlockPosition, data []byte, threshold int) ([]BlockPosition, error) {
	if err := CheckCapacity(blocks, len(data)*8); err != nil {
		return nil, err
	}

	used := (len(data) + blockBytes - 1) / blockBytes
	for i := 0; i < used; i++ {
		c := chunk(data, i)
		if len(c) < blockBytes {
			continue
		}
		if score := Complexity(Block(binary.BigEndian.Uint64(c))); score < threshold {
			return nil, fmt.Errorf("%w: payload bytes %d-%d have complexity %d (threshold %d)",
				ErrSelectionDrift, i*blockBytes, i*blockBytes+blockBytes-1, score, threshold)
		}
	}

	touched := make([]BlockPosition, 0, used)
	next := 0
	for i := 0; i < used; i++ {
		c := chunk(data, i)
		for {
			if next == len(blocks) {
				// Every skipped block cost 64 bits of capacity.
				return nil, &CapacityError{
					RequiredBits: len(data) * 8,
					CapacityBits: CapacityBits(blocks) - (next-len(touched))*BlockBits,
				}
			}
			pos := blocks[next]
			next++
			writeChunk(img, pos, c)
			if Complexity(ExtractBlock(img, pos)) >= threshold {
				touched = append(touched, pos)
				break
			}
		}
	}
	return touched, nil
}

// chunk is the i-th group of up to 64 bits of data.
func chunk(data []byte, i int) []byte {
	c := data[i*blockBytes:]
	if len(c) > blockBytes {
		c = c[:blockBytes]
	}
	return c
}

// writeChunk overwrites the leading cells of the block at pos with c and
// keeps the rest.
func writeChunk(img *bitmap.Image, pos BlockPosition, c []byte) {
	var word [blockBytes]byte
	copy(word[:], c)
	keep := ^uint64(0) >> (len(c) * 8)

	current := uint64(ExtractBlock(img, pos))
	next := current&keep | binary.BigEndian.Uint64(word[:])&^keep
	WriteBlock(img, pos, Block(next))
}

// CheckDrift re-scores the touched blocks of a stego image and fails if any
// of them is no longer eligible.
func CheckDrift(img *bitmap.Image, touched []BlockPosition, threshold int) error {
	for _, pos := range touched {
		if c := Complexity(ExtractBlock(img, pos)); c < threshold {
			return fmt.Errorf("%w: block %s has complexity %d (threshold %d)", ErrSelectionDrift, pos, c, threshold)
		}
	}
	return nil
}

// Reader pulls bytes back out of a sequence of blocks. It only touches a
// block when the caller asks for bits that live in it.
type Reader struct {
	img    *bitmap.Image
	blocks []BlockPosition
	offset int // bytes consumed
	cur    [blockBytes]byte
	curIdx int
}

// NewReader returns a Reader over blocks of img in the given order.
func NewReader(img *bitmap.Image, blocks []BlockPosition) *Reader {
	return &Reader{img: img, blocks: blocks, curIdx: -1}
}

// Remaining is the number of whole bytes still available.
func (r *Reader) Remaining() int {
	return len(r.blocks)*blockBytes - r.offset
}

// Offset is the number of bytes read so far.
func (r *Reader) Offset() int {
	return r.offset
}

// Next returns the following n bytes, or ErrStreamExhausted without
// consuming anything when fewer than n remain.
func (r *Reader) Next(n int) ([]byte, error) {
	if n > r.Remaining() {
		return nil, fmt.Errorf("%w: want %d bytes, %d left", ErrStreamExhausted, n, r.Remaining())
	}
	out := make([]byte, n)
	for i := range out {
		idx := r.offset / blockBytes
		if idx != r.curIdx {
			binary.BigEndian.PutUint64(r.cur[:], uint64(ExtractBlock(r.img, r.blocks[idx])))
			r.curIdx = idx
		}
		out[i] = r.cur[r.offset%blockBytes]
		r.offset++
	}
	return out, nil
}
