package bpcs

import (
	"reflect"
	"testing"

	"github.com/Beastly713/bpcs/pkg/bitmap"
)

func TestSelectCanonicalOrder(t *testing.T) {
	img := checkerboard(16, 16)
	blocks := selectBlocks(img, DefaultThreshold)

	if len(blocks) != bitmap.Channels*BitPlanes*4 {
		t.Fatalf("got %d eligible blocks, want %d", len(blocks), bitmap.Channels*BitPlanes*4)
	}

	want := []BlockPosition{
		{Channel: bitmap.Red, BitPlane: 7, X: 0, Y: 0},
		{Channel: bitmap.Red, BitPlane: 7, X: 8, Y: 0},
		{Channel: bitmap.Red, BitPlane: 7, X: 0, Y: 8},
		{Channel: bitmap.Red, BitPlane: 7, X: 8, Y: 8},
		{Channel: bitmap.Red, BitPlane: 6, X: 0, Y: 0},
	}
	if !reflect.DeepEqual(blocks[:len(want)], want) {
		t.Errorf("order mismatch:\n got %v\nwant %v", blocks[:len(want)], want)
	}

	last := blocks[len(blocks)-1]
	if last != (BlockPosition{Channel: bitmap.Blue, BitPlane: 0, X: 8, Y: 8}) {
		t.Errorf("last block = %v", last)
	}
}

func TestSelectDeterministic(t *testing.T) {
	img := noise(64, 48, 7)
	first := selectBlocks(img, DefaultThreshold)
	second := selectBlocks(img, DefaultThreshold)

	if !reflect.DeepEqual(first, second) {
		t.Fatal("two selections over the same image differ")
	}
	if len(first) == 0 {
		t.Fatal("noise image should have eligible blocks")
	}
}

func TestSelectIgnoresPartialBlocks(t *testing.T) {
	img := checkerboard(20, 12) // 2 x 1 whole blocks
	a := NewAnalysis(img)

	if a.Blocks() != bitmap.Channels*BitPlanes*2 {
		t.Fatalf("Blocks() = %d, want %d", a.Blocks(), bitmap.Channels*BitPlanes*2)
	}
	for _, pos := range a.Select(0) {
		if pos.X+BlockSize > 20 || pos.Y+BlockSize > 12 {
			t.Fatalf("block %v overruns the image", pos)
		}
	}
}

func TestSelectThreshold(t *testing.T) {
	flat := bitmap.New(16, 16)
	if got := selectBlocks(flat, DefaultThreshold); len(got) != 0 {
		t.Errorf("flat image selected %d blocks", len(got))
	}
	if got := selectBlocks(flat, 0); len(got) != bitmap.Channels*BitPlanes*4 {
		t.Errorf("threshold 0 should select every block, got %d", len(got))
	}
}

func TestAnalysisScoreAndCounts(t *testing.T) {
	img := checkerboard(16, 8)
	a := NewAnalysis(img)

	pos := BlockPosition{Channel: bitmap.Blue, BitPlane: 2, X: 8, Y: 0}
	if got := a.Score(pos); got != MaxComplexity {
		t.Errorf("Score(%v) = %d, want %d", pos, got, MaxComplexity)
	}

	counts := a.PlaneCounts(DefaultThreshold)
	for ch := range counts {
		for plane, n := range counts[ch] {
			if n != 2 {
				t.Errorf("channel %d plane %d: %d eligible, want 2", ch, plane, n)
			}
		}
	}
}

func TestCapacityBitsExact(t *testing.T) {
	img := noise(40, 40, 3)
	blocks := selectBlocks(img, DefaultThreshold)

	if got := CapacityBits(blocks); got != 64*len(blocks) {
		t.Errorf("CapacityBits = %d, want %d", got, 64*len(blocks))
	}
}
