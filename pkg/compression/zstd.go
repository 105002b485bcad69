package compression

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// Codec names as recorded in a shard header.
const (
	Gzip = "gzip"
	Zstd = "zstd"
)

// ErrUnknownCodec is returned by New for a codec name it does not know.
var ErrUnknownCodec = errors.New("unknown compression codec")

// New returns the compressor registered under name. An empty name is gzip,
// which is what records written before the field existed used.
func New(name string) (Compressor, error) {
	switch name {
	case "", Gzip:
		return NewGzipCompressor(), nil
	case Zstd:
		return NewZstdCompressor(), nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownCodec, name)
}

// ZstdCompressor trades a little ratio on tiny inputs for much faster
// compression of large files.
type ZstdCompressor struct {
	Level zstd.EncoderLevel
	Limit int64
}

func NewZstdCompressor() *ZstdCompressor {
	return &ZstdCompressor{Level: zstd.SpeedBestCompression, Limit: DefaultLimit}
}

func (z *ZstdCompressor) Compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(z.Level))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

func (z *ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("not a zstd stream: %w", err)
	}
	defer dec.Close()

	limit := z.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	out, err := io.ReadAll(io.LimitReader(dec, limit+1))
	if err != nil {
		return nil, fmt.Errorf("not a zstd stream: %w", err)
	}
	if int64(len(out)) > limit {
		return nil, fmt.Errorf("%w (%d bytes)", ErrTooLarge, limit)
	}
	return out, nil
}
