package bitmap

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/image/bmp"
)

// ErrUnsupportedFormat is returned for anything other than an uncompressed 24-bpp bitmap.
var ErrUnsupportedFormat = errors.New("unsupported bitmap format (need 24-bit uncompressed BMP)")

const (
	fileHeaderLen = 14
	minInfoLen    = 40
	maxInfoLen    = 124 // BITMAPV5HEADER
	sniffLen      = fileHeaderLen + minInfoLen

	biRGB = 0
)

// Header is the subset of BITMAPFILEHEADER/BITMAPINFOHEADER fields we validate.
type Header struct {
	DataOffset  uint32
	InfoLen     uint32
	Width       int32
	Height      int32 // negative means rows are stored top-down
	Planes      uint16
	BitCount    uint16
	Compression uint32
}

func parseHeader(b []byte) (Header, error) {
	if len(b) < sniffLen || b[0] != 'B' || b[1] != 'M' {
		return Header{}, fmt.Errorf("%w: missing BM signature", ErrUnsupportedFormat)
	}
	h := Header{
		DataOffset:  binary.LittleEndian.Uint32(b[10:14]),
		InfoLen:     binary.LittleEndian.Uint32(b[14:18]),
		Width:       int32(binary.LittleEndian.Uint32(b[18:22])),
		Height:      int32(binary.LittleEndian.Uint32(b[22:26])),
		Planes:      binary.LittleEndian.Uint16(b[26:28]),
		BitCount:    binary.LittleEndian.Uint16(b[28:30]),
		Compression: binary.LittleEndian.Uint32(b[30:34]),
	}
	if h.InfoLen < minInfoLen {
		return h, fmt.Errorf("%w: info header is %d bytes", ErrUnsupportedFormat, h.InfoLen)
	}
	if h.BitCount != 24 {
		return h, fmt.Errorf("%w: %d bits per pixel", ErrUnsupportedFormat, h.BitCount)
	}
	if h.Compression != biRGB {
		return h, fmt.Errorf("%w: compression type %d", ErrUnsupportedFormat, h.Compression)
	}
	if h.Planes != 1 || h.Width <= 0 || h.Height == 0 {
		return h, fmt.Errorf("%w: bad geometry %dx%d", ErrUnsupportedFormat, h.Width, h.Height)
	}
	return h, nil
}

// Decode reads a 24-bpp uncompressed bitmap. Row padding and the bottom-up or
// top-down orientation are handled by the decoder; the result is top row first.
func Decode(r io.Reader) (*Image, error) {
	buf := make([]byte, sniffLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, truncated("header", err)
	}
	h, err := parseHeader(buf)
	if err != nil {
		return nil, err
	}

	src := io.MultiReader(bytes.NewReader(buf), r)
	if h.DataOffset != fileHeaderLen+h.InfoLen {
		if src, err = realign(src, h); err != nil {
			return nil, err
		}
	}

	img, err := bmp.Decode(src)
	if err != nil {
		if errors.Is(err, bmp.ErrUnsupported) {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
		}
		return nil, truncated("pixel data", err)
	}
	return FromImage(img), nil
}

// realign drops whatever sits between the info header and the pixel data (an
// unused palette, alignment gap) and fixes up the offset, since the decoder
// only accepts pixels that directly follow the header.
func realign(r io.Reader, h Header) (io.Reader, error) {
	if h.InfoLen > maxInfoLen {
		return nil, fmt.Errorf("%w: info header is %d bytes", ErrUnsupportedFormat, h.InfoLen)
	}
	headerLen := fileHeaderLen + h.InfoLen
	if h.DataOffset < headerLen {
		return nil, fmt.Errorf("%w: pixel data offset %d overlaps the header", ErrUnsupportedFormat, h.DataOffset)
	}

	head := make([]byte, headerLen)
	if _, err := io.ReadFull(r, head); err != nil {
		return nil, truncated("header", err)
	}
	binary.LittleEndian.PutUint32(head[10:14], headerLen)
	if _, err := io.CopyN(io.Discard, r, int64(h.DataOffset-headerLen)); err != nil {
		return nil, truncated("header", err)
	}
	return io.MultiReader(bytes.NewReader(head), r), nil
}

// truncated reports a file that ends early as unsupported, like any other
// malformed bitmap. Other read errors pass through.
func truncated(section string, err error) error {
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: truncated %s", ErrUnsupportedFormat, section)
	}
	return fmt.Errorf("failed to read bitmap %s: %w", section, err)
}

// DecodeBytes is Decode over an in-memory file.
func DecodeBytes(data []byte) (*Image, error) {
	return Decode(bytes.NewReader(data))
}

// Encode writes img as a 24-bpp uncompressed bitmap.
func Encode(w io.Writer, img *Image) error {
	if img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("cannot encode empty image %dx%d", img.Width, img.Height)
	}
	if err := bmp.Encode(w, img.RGBA()); err != nil {
		return fmt.Errorf("failed to encode bitmap: %w", err)
	}
	return nil
}

// EncodeBytes is Encode into a fresh buffer.
func EncodeBytes(img *Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
