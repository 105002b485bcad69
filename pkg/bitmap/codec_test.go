package bitmap

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

// rawBMP builds a bitmap file by hand so the decoder is tested against bytes
// we control: 24-bpp rows padded to 4 bytes, BGR order.
func rawBMP(t *testing.T, img *Image, topDown bool, bitCount uint16, compression uint32) []byte {
	t.Helper()

	rowSize := (img.Width*3 + 3) &^ 3
	dataSize := rowSize * img.Height

	var buf bytes.Buffer
	le := binary.LittleEndian

	// BITMAPFILEHEADER
	buf.WriteString("BM")
	binary.Write(&buf, le, uint32(54+dataSize))
	binary.Write(&buf, le, uint32(0))
	binary.Write(&buf, le, uint32(54))

	// BITMAPINFOHEADER
	height := int32(img.Height)
	if topDown {
		height = -height
	}
	binary.Write(&buf, le, uint32(40))
	binary.Write(&buf, le, int32(img.Width))
	binary.Write(&buf, le, height)
	binary.Write(&buf, le, uint16(1))
	binary.Write(&buf, le, bitCount)
	binary.Write(&buf, le, compression)
	binary.Write(&buf, le, uint32(dataSize))
	binary.Write(&buf, le, int32(2835))
	binary.Write(&buf, le, int32(2835))
	binary.Write(&buf, le, uint32(0))
	binary.Write(&buf, le, uint32(0))

	row := make([]byte, rowSize)
	for i := 0; i < img.Height; i++ {
		y := img.Height - 1 - i
		if topDown {
			y = i
		}
		for x := 0; x < img.Width; x++ {
			p := img.At(x, y)
			row[x*3+0] = p.B
			row[x*3+1] = p.G
			row[x*3+2] = p.R
		}
		buf.Write(row)
	}
	return buf.Bytes()
}

func gradient(w, h int) *Image {
	img := New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, Pixel{R: uint8(x * 17), G: uint8(y * 31), B: uint8(x*y + 7)})
		}
	}
	return img
}

func TestDecodeOrientation(t *testing.T) {
	// Width 5 forces 1 byte of row padding (15 -> 16).
	want := gradient(5, 3)

	for _, topDown := range []bool{false, true} {
		data := rawBMP(t, want, topDown, 24, 0)

		got, err := DecodeBytes(data)
		if err != nil {
			t.Fatalf("topDown=%v: decode failed: %v", topDown, err)
		}
		if got.Width != want.Width || got.Height != want.Height {
			t.Fatalf("topDown=%v: size %dx%d, want %dx%d", topDown, got.Width, got.Height, want.Width, want.Height)
		}
		for i := range want.Pix {
			if got.Pix[i] != want.Pix[i] {
				t.Fatalf("topDown=%v: pixel %d = %+v, want %+v", topDown, i, got.Pix[i], want.Pix[i])
			}
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	want := gradient(16, 8)

	data, err := EncodeBytes(want)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if data[28] != 24 {
		t.Errorf("encoded bit count = %d, want 24", data[28])
	}

	got, err := DecodeBytes(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	for i := range want.Pix {
		if got.Pix[i] != want.Pix[i] {
			t.Fatalf("pixel %d = %+v, want %+v", i, got.Pix[i], want.Pix[i])
		}
	}
}

func TestRejectsUnsupported(t *testing.T) {
	img := gradient(4, 4)

	tests := []struct {
		name string
		data []byte
	}{
		{"32bpp", rawBMP(t, img, false, 32, 0)},
		{"rle", rawBMP(t, img, false, 24, 1)},
		{"png magic", []byte("\x89PNG\r\n\x1a\n0000000000000000000000000000000000000000000000000000")},
		{"truncated", []byte("BM\x00\x00")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBytes(tt.data)
			if !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("expected ErrUnsupportedFormat, got %v", err)
			}
		})
	}
}

func TestCloneIsIndependent(t *testing.T) {
	orig := gradient(2, 2)
	c := orig.Clone()
	c.Pix[0].SetChannel(Green, 99)

	if orig.Pix[0].G == 99 {
		t.Error("mutating the clone changed the original")
	}
	if c.Pix[0].Channel(Green) != 99 {
		t.Errorf("SetChannel/Channel mismatch: got %d", c.Pix[0].Channel(Green))
	}
}

func TestDecodeTruncatedPixels(t *testing.T) {
	data := rawBMP(t, gradient(16, 16), false, 24, 0)

	_, err := DecodeBytes(data[:len(data)/2])
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestDecodeDataOffsetGap(t *testing.T) {
	want := gradient(5, 3)
	data := rawBMP(t, want, false, 24, 0)

	// Some writers pad the headers; the pixels start at the stored offset.
	const gap = 10
	gapped := append(append(append([]byte{}, data[:54]...), make([]byte, gap)...), data[54:]...)
	binary.LittleEndian.PutUint32(gapped[10:14], 54+gap)

	got, err := DecodeBytes(gapped)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	for i := range want.Pix {
		if got.Pix[i] != want.Pix[i] {
			t.Fatalf("pixel %d = %+v, want %+v", i, got.Pix[i], want.Pix[i])
		}
	}

	// An offset inside the header is rejected.
	binary.LittleEndian.PutUint32(gapped[10:14], 20)
	if _, err := DecodeBytes(gapped); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}
