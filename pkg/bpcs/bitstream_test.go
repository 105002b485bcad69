package bpcs

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Beastly713/bpcs/pkg/bitmap"
)

func TestEmbedAndRead(t *testing.T) {
	img := checkerboard(32, 32)
	blocks := selectBlocks(img, DefaultThreshold)

	// Alternating 0x55/0xAA keeps every written block at full complexity.
	data := bytes.Repeat([]byte{0x55, 0xAA}, 20)

	touched, err := Embed(img, blocks, data)
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(touched) != 5 {
		t.Fatalf("touched %d blocks, want 5", len(touched))
	}
	if err := CheckDrift(img, touched, DefaultThreshold); err != nil {
		t.Fatalf("unexpected drift: %v", err)
	}

	r := NewReader(img, selectBlocks(img, DefaultThreshold))
	got, err := r.Next(len(data))
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("read back %x, want %x", got, data)
	}
	if r.Offset() != len(data) {
		t.Errorf("Offset = %d, want %d", r.Offset(), len(data))
	}
}

func TestEmbedPartialBlockKeepsTail(t *testing.T) {
	img := checkerboard(8, 8)
	blocks := selectBlocks(img, DefaultThreshold)
	before := ExtractBlock(img, blocks[0])
	neighbour := ExtractBlock(img, blocks[1])

	if _, err := Embed(img, blocks, []byte{0x12, 0x34, 0x56}); err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	after := ExtractBlock(img, blocks[0])
	if uint64(after)>>40 != 0x123456 {
		t.Errorf("head = %#x, want 0x123456", uint64(after)>>40)
	}
	const tail = 1<<40 - 1
	if uint64(after)&tail != uint64(before)&tail {
		t.Errorf("cells after the payload were modified")
	}
	if ExtractBlock(img, blocks[1]) != neighbour {
		t.Errorf("second block should be untouched")
	}
}

func TestEmbedRejectsOversized(t *testing.T) {
	img := checkerboard(8, 8)
	orig := img.Clone()
	blocks := selectBlocks(img, DefaultThreshold)

	_, err := Embed(img, blocks, make([]byte, CapacityBits(blocks)/8+1))

	var capErr *CapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected *CapacityError, got %v", err)
	}
	if capErr.MaxBytes() != 24*8 {
		t.Errorf("MaxBytes = %d, want %d", capErr.MaxBytes(), 24*8)
	}
	for i := range orig.Pix {
		if orig.Pix[i] != img.Pix[i] {
			t.Fatal("image mutated despite capacity failure")
		}
	}
}

func TestCheckDriftDetectsDemotedBlock(t *testing.T) {
	img := checkerboard(8, 8)
	blocks := selectBlocks(img, DefaultThreshold)

	touched, err := Embed(img, blocks, make([]byte, 8))
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	if err := CheckDrift(img, touched, DefaultThreshold); !errors.Is(err, ErrSelectionDrift) {
		t.Errorf("expected ErrSelectionDrift, got %v", err)
	}
}

func TestReaderExhausted(t *testing.T) {
	img := checkerboard(8, 8)
	blocks := selectBlocks(img, DefaultThreshold)[:2]
	r := NewReader(img, blocks)

	if _, err := r.Next(10); err != nil {
		t.Fatalf("Next(10) failed: %v", err)
	}
	if _, err := r.Next(7); !errors.Is(err, ErrStreamExhausted) {
		t.Errorf("expected ErrStreamExhausted, got %v", err)
	}
	if r.Remaining() != 6 {
		t.Errorf("failed read consumed bytes: remaining %d", r.Remaining())
	}
}

func TestReaderFollowsBlockOrder(t *testing.T) {
	img := noise(24, 16, 11)
	blocks := selectBlocks(img, DefaultThreshold)

	got, err := NewReader(img, blocks).Next(len(blocks) * 8)
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	for i, pos := range blocks {
		want := uint64(ExtractBlock(img, pos))
		for j := 0; j < 8; j++ {
			if got[i*8+j] != byte(want>>(56-8*j)) {
				t.Fatalf("block %d byte %d = %#x, want %#x", i, j, got[i*8+j], byte(want>>(56-8*j)))
			}
		}
	}
}

// twoBlocks returns a 16x8 image in which only the top red plane carries
// complex blocks: a at x=0 and b at x=8.
func twoBlocks(a, b Block) (*bitmap.Image, BlockPosition, BlockPosition) {
	img := bitmap.New(16, 8)
	pa := BlockPosition{Channel: 0, BitPlane: 7, X: 0, Y: 0}
	pb := BlockPosition{Channel: 0, BitPlane: 7, X: 8, Y: 0}
	WriteBlock(img, pa, a)
	WriteBlock(img, pb, b)
	return img, pa, pb
}

func TestEmbedSkippingMovesPastDemotedBlock(t *testing.T) {
	// Rows 55 AA 55 00.. score 41. With a zero top row they score 30.
	img, pa, pb := twoBlocks(0x55AA550000000000, 0x55AA55AA55AA55AA)
	blocks := selectBlocks(img, DefaultThreshold)
	if len(blocks) != 2 {
		t.Fatalf("selected %d blocks, want 2", len(blocks))
	}

	touched, err := EmbedSkipping(img, blocks, []byte{0x00}, DefaultThreshold)
	if err != nil {
		t.Fatalf("EmbedSkipping failed: %v", err)
	}
	if len(touched) != 1 || touched[0] != pb {
		t.Fatalf("touched %v, want [%s]", touched, pb)
	}
	if got := ExtractBlock(img, pa); got != 0x00AA550000000000 {
		t.Errorf("skipped block = %#x, want it left as written", uint64(got))
	}

	// The extractor no longer selects the first block.
	again := selectBlocks(img, DefaultThreshold)
	if len(again) != 1 || again[0] != pb {
		t.Fatalf("stego selection %v, want [%s]", again, pb)
	}
	got, err := NewReader(img, again).Next(1)
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if got[0] != 0x00 {
		t.Errorf("read back %#x, want 0x00", got[0])
	}
}

func TestEmbedSkippingRunsOutOfBlocks(t *testing.T) {
	img, _, _ := twoBlocks(0x55AA550000000000, 0)
	blocks := selectBlocks(img, DefaultThreshold)

	_, err := EmbedSkipping(img, blocks, []byte{0x00}, DefaultThreshold)
	var capErr *CapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected *CapacityError, got %v", err)
	}
	if capErr.MaxBytes() != 0 {
		t.Errorf("MaxBytes = %d, want 0", capErr.MaxBytes())
	}
}

func TestEmbedSkippingRejectsSimpleChunk(t *testing.T) {
	img := checkerboard(16, 16)
	orig := img.Clone()
	blocks := selectBlocks(img, DefaultThreshold)

	// A whole chunk of zeros scores 0 in any block.
	data := append(bytes.Repeat([]byte{0x55, 0xAA}, 4), make([]byte, 8)...)
	_, err := EmbedSkipping(img, blocks, data, DefaultThreshold)
	if !errors.Is(err, ErrSelectionDrift) {
		t.Fatalf("expected ErrSelectionDrift, got %v", err)
	}
	for i := range orig.Pix {
		if orig.Pix[i] != img.Pix[i] {
			t.Fatal("image mutated before the chunk check")
		}
	}
}
