package format

import (
	"errors"
	"fmt"
)

// Markers delimiting the sections of a shard record. A shard record is what
// scatter hides in each cover: a short human-readable banner, a JSON header
// and the raw shard bytes.
const (
	// MagicHeader is the banner found at the top of every shard record
	MagicHeader = `# THIS IS A BPCS SHARD.
# IT IS SHARD %d OF %d CUT FROM AN ORIGINAL FILE.
# RECOVER THE FILE BY GATHERING %d MORE STEGO IMAGE(S) FROM THE SAME SET.
`
	// HeaderMarker indicates the start of the JSON metadata
	HeaderMarker = "-- HEADER --"

	// BodyMarker indicates the start of the shard bytes
	BodyMarker = "-- BODY --"
)

// ShardHeader carries what gather needs to put a scattered file back together.
type ShardHeader struct {
	// OriginalFilename is the name of the scattered secret
	OriginalFilename string `json:"originalFilename"`

	// Timestamp is the unix time of the scatter run.
	// Shards are only combined with others from the same run.
	Timestamp int64 `json:"timestamp"`

	// Index is the shard index (1-based)
	Index int `json:"index"`

	// Total is the number of covers the file was spread across
	Total int `json:"total"`

	// Threshold is the number of shards required to recover the file
	Threshold int `json:"threshold"`

	// Size is the length of the sealed stream before it was cut into shards
	Size int `json:"size"`

	// KeyFragment is this shard's Shamir share of the sealing key
	KeyFragment []byte `json:"keyFragment"`

	// Compression names the codec applied before sealing. Empty means gzip.
	Compression string `json:"compression,omitempty"`
}

// Validate checks if the header contains sane values.
func (h *ShardHeader) Validate() error {
	if h.Index < 1 || h.Index > h.Total {
		return fmt.Errorf("invalid index %d for total %d", h.Index, h.Total)
	}
	if h.Threshold < 2 || h.Threshold > h.Total {
		return fmt.Errorf("invalid threshold %d for total %d", h.Threshold, h.Total)
	}
	if h.Size <= 0 {
		return fmt.Errorf("invalid sealed size %d", h.Size)
	}
	if len(h.KeyFragment) == 0 {
		return errors.New("header is missing key fragment")
	}
	if h.OriginalFilename == "" {
		return errors.New("header is missing original filename")
	}
	return nil
}

// GroupID identifies the scatter run a shard belongs to.
func (h *ShardHeader) GroupID() string {
	return fmt.Sprintf("%s|%d", h.OriginalFilename, h.Timestamp)
}
