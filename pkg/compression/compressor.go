// Package compression shrinks a secret before it is sealed and scattered, so
// fewer eligible blocks are needed in each cover.
package compression

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
)

// ErrTooLarge is returned when a stream inflates past the configured limit.
var ErrTooLarge = errors.New("decompressed data exceeds limit")

// DefaultLimit caps inflated output. A 24-bpp bitmap cannot carry more than
// 3 bytes per pixel, so anything beyond this did not come from a real cover set.
const DefaultLimit = 1 << 30

// Compressor defines the contract for data compression
type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// GzipCompressor implements gzip compression with a bounded decompressor.
type GzipCompressor struct {
	Level int
	Limit int64
}

// NewGzipCompressor favours ratio over speed: every byte saved is 8 fewer
// bits of embedding distortion.
func NewGzipCompressor() *GzipCompressor {
	return &GzipCompressor{Level: gzip.BestCompression, Limit: DefaultLimit}
}

func (g *GzipCompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer, err := gzip.NewWriterLevel(&buf, g.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid gzip level %d: %w", g.Level, err)
	}
	if _, err := writer.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *GzipCompressor) Decompress(data []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("not a gzip stream: %w", err)
	}
	defer reader.Close()

	limit := g.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	out, err := io.ReadAll(io.LimitReader(reader, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(out)) > limit {
		return nil, fmt.Errorf("%w (%d bytes)", ErrTooLarge, limit)
	}
	return out, nil
}
