package format

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestEncodePayloadLayout(t *testing.T) {
	got, err := EncodePayload("hi.txt", []byte("hello"))
	if err != nil {
		t.Fatalf("EncodePayload failed: %v", err)
	}

	want := []byte{0x06, 'h', 'i', '.', 't', 'x', 't', 0x05, 0x00, 0x00, 0x00, 'h', 'e', 'l', 'l', 'o'}
	if !bytes.Equal(got, want) {
		t.Fatalf("EncodePayload = %x, want %x", got, want)
	}
	if len(got) != 16 {
		t.Errorf("payload length = %d, want 16", len(got))
	}
	if HeaderSize("hi.txt") != 11 {
		t.Errorf("HeaderSize = %d, want 11", HeaderSize("hi.txt"))
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		secret []byte
	}{
		{"a", nil},
		{"notes.md", []byte("# notes\n")},
		{strings.Repeat("n", MaxFilenameLen), bytes.Repeat([]byte{0xAB}, 300)},
	}

	for _, tt := range tests {
		encoded, err := EncodePayload(tt.name, tt.secret)
		if err != nil {
			t.Fatalf("EncodePayload(%q) failed: %v", tt.name, err)
		}
		// Extracted buffers are padded to whole blocks.
		padded := append(encoded, make([]byte, 13)...)

		p, err := DecodePayload(padded)
		if err != nil {
			t.Fatalf("DecodePayload(%q) failed: %v", tt.name, err)
		}
		if p.Filename != tt.name || !bytes.Equal(p.Secret, tt.secret) {
			t.Errorf("round trip mismatch: got %q/%x", p.Filename, p.Secret)
		}
	}
}

func TestEncodePayloadRejectsBadNames(t *testing.T) {
	for _, name := range []string{"", strings.Repeat("x", MaxFilenameLen+1)} {
		if _, err := EncodePayload(name, []byte("data")); !errors.Is(err, ErrInvalidFilename) {
			t.Errorf("name of %d bytes: expected ErrInvalidFilename, got %v", len(name), err)
		}
	}
}

func TestDecodePayloadCorrupt(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
	}{
		{"empty", nil},
		{"shorter than 8 bytes", []byte{0x01, 'a', 0, 0, 0, 0, 0}},
		{"zero filename length", []byte{0x00, 'a', 'b', 'c', 0, 0, 0, 0}},
		{"name overruns buffer", []byte{0x20, 'a', 'b', 'c', 'd', 'e', 'f', 'g'}},
		{"length field overruns buffer", []byte{0x05, 'a', 'b', 'c', 'd', 'e', 0, 0}},
		{"secret overruns buffer", []byte{0x01, 'a', 0x10, 0, 0, 0, 'x', 'y', 'z'}},
		{"huge secret length", []byte{0x01, 'a', 0xff, 0xff, 0xff, 0xff, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodePayload(tt.buf); !errors.Is(err, ErrCorruptData) {
				t.Errorf("expected ErrCorruptData, got %v", err)
			}
		})
	}
}
