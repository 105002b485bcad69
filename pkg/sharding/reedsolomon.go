// Package sharding erasure-codes a sealed secret so it can be spread across
// several stego images and rebuilt from any threshold of them.
package sharding

import (
	"errors"
	"fmt"

	"github.com/klauspost/reedsolomon"
)

// ErrTooFewShards is returned by Join when fewer than Threshold shards are present.
var ErrTooFewShards = errors.New("not enough shards to reconstruct")

// Shard is one fragment of the encoded stream.
type Shard struct {
	Index int    // 0-based index
	Data  []byte // data or parity bytes
}

// Splitter handles erasure coding (Reed-Solomon). Threshold data shards plus
// Total-Threshold parity shards are produced.
type Splitter struct {
	Total     int
	Threshold int
}

func NewSplitter(total, threshold int) (*Splitter, error) {
	if threshold < 1 {
		return nil, fmt.Errorf("threshold must be at least 1, got %d", threshold)
	}
	if threshold > total {
		return nil, fmt.Errorf("threshold %d cannot exceed total shards %d", threshold, total)
	}
	return &Splitter{
		Total:     total,
		Threshold: threshold,
	}, nil
}

// ShardSize is the length of every shard cut from size bytes.
func (s *Splitter) ShardSize(size int) int {
	return (size + s.Threshold - 1) / s.Threshold
}

// encoder is nil when every shard is needed and there is no parity to compute.
func (s *Splitter) encoder() (reedsolomon.Encoder, error) {
	if s.Total == s.Threshold {
		return nil, nil
	}
	return reedsolomon.New(s.Threshold, s.Total-s.Threshold)
}

// Split cuts data into Total equally sized shards.
func (s *Splitter) Split(data []byte) ([]Shard, error) {
	if len(data) == 0 {
		return nil, errors.New("cannot shard empty data")
	}
	enc, err := s.encoder()
	if err != nil {
		return nil, err
	}

	var parts [][]byte
	if enc == nil {
		per := s.ShardSize(len(data))
		padded := make([]byte, per*s.Total)
		copy(padded, data)
		for i := 0; i < s.Total; i++ {
			parts = append(parts, padded[i*per:(i+1)*per])
		}
	} else {
		// Split pads the last data shard with zeros.
		if parts, err = enc.Split(data); err != nil {
			return nil, err
		}
		if err := enc.Encode(parts); err != nil {
			return nil, err
		}
	}

	shards := make([]Shard, len(parts))
	for i, p := range parts {
		shards[i] = Shard{Index: i, Data: p}
	}
	return shards, nil
}

// Join rebuilds the original size bytes from the shards present in the map,
// keyed by shard index.
func (s *Splitter) Join(shards map[int][]byte, size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid original size %d", size)
	}

	parts := make([][]byte, s.Total)
	present := 0
	for i := 0; i < s.Total; i++ {
		if data, ok := shards[i]; ok && len(data) > 0 {
			parts[i] = data
			present++
		}
	}
	if present < s.Threshold {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrTooFewShards, present, s.Threshold)
	}

	enc, err := s.encoder()
	if err != nil {
		return nil, err
	}
	if enc != nil {
		if err := enc.ReconstructData(parts); err != nil {
			return nil, fmt.Errorf("reconstruction failed: %w", err)
		}
	}

	joined := make([]byte, 0, len(parts[0])*s.Threshold)
	for i := 0; i < s.Threshold; i++ {
		joined = append(joined, parts[i]...)
	}
	if len(joined) < size {
		return nil, fmt.Errorf("reconstructed %d bytes, expected %d", len(joined), size)
	}
	return joined[:size], nil
}
