package bpcs

import (
	"reflect"
	"sort"
	"testing"
)

func TestSeedFromPassword(t *testing.T) {
	tests := []struct {
		password string
		want     uint32
	}{
		{"", 0},
		{"a", 97},
		{"ab", 195},
		{"ba", 195},
		{"\xff\xff", 510},
	}
	for _, tt := range tests {
		if got := SeedFromPassword(tt.password); got != tt.want {
			t.Errorf("SeedFromPassword(%q) = %d, want %d", tt.password, got, tt.want)
		}
	}
}

func TestShuffleSymmetry(t *testing.T) {
	blocks := selectBlocks(checkerboard(64, 64), DefaultThreshold)

	embedSide := append([]BlockPosition(nil), blocks...)
	extractSide := append([]BlockPosition(nil), blocks...)
	Shuffle(embedSide, SeedFromPassword("hunter2"))
	Shuffle(extractSide, SeedFromPassword("hunter2"))

	if !reflect.DeepEqual(embedSide, extractSide) {
		t.Fatal("same password produced different orders")
	}
	if reflect.DeepEqual(embedSide, blocks) {
		t.Fatal("shuffle left the order unchanged")
	}

	other := append([]BlockPosition(nil), blocks...)
	Shuffle(other, SeedFromPassword("hunter3"))
	if reflect.DeepEqual(embedSide, other) {
		t.Error("different seeds produced the same order")
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	blocks := selectBlocks(checkerboard(32, 32), DefaultThreshold)
	shuffled := append([]BlockPosition(nil), blocks...)
	Shuffle(shuffled, 42)

	key := func(s []BlockPosition) []string {
		out := make([]string, len(s))
		for i, p := range s {
			out[i] = p.String()
		}
		sort.Strings(out)
		return out
	}
	if !reflect.DeepEqual(key(blocks), key(shuffled)) {
		t.Error("shuffle lost or duplicated blocks")
	}
}
