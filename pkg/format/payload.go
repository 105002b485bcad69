package format

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// MaxFilenameLen is the largest name the one-byte length field can describe.
	MaxFilenameLen = 255

	// MinPayloadLen is the shortest extracted buffer worth parsing.
	MinPayloadLen = 8

	secretLenSize = 4
)

// ErrCorruptData indicates the extracted bytes do not form a valid payload.
var ErrCorruptData = errors.New("corrupt payload")

// ErrInvalidFilename indicates a name that cannot be stored in the payload header.
var ErrInvalidFilename = errors.New("invalid secret filename")

// Payload is the named secret carried inside a stego image. On the wire it is
//
//	[u8 nameLen][name][u32 little-endian secretLen][secret]
type Payload struct {
	Filename string
	Secret   []byte
}

// Validate checks that the filename fits the one-byte length field.
func (p *Payload) Validate() error {
	if len(p.Filename) == 0 {
		return fmt.Errorf("%w: filename is empty", ErrInvalidFilename)
	}
	if len(p.Filename) > MaxFilenameLen {
		return fmt.Errorf("%w: %d bytes exceeds maximum of %d", ErrInvalidFilename, len(p.Filename), MaxFilenameLen)
	}
	if uint64(len(p.Secret)) > uint64(^uint32(0)) {
		return fmt.Errorf("secret of %d bytes does not fit the length field", len(p.Secret))
	}
	return nil
}

// Size is the encoded length in bytes.
func (p *Payload) Size() int {
	return 1 + len(p.Filename) + secretLenSize + len(p.Secret)
}

// HeaderSize is the overhead added in front of a secret stored under name.
func HeaderSize(name string) int {
	return 1 + len(name) + secretLenSize
}

// Marshal serializes the payload.
func (p *Payload) Marshal() ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	out := make([]byte, 0, p.Size())
	out = append(out, byte(len(p.Filename)))
	out = append(out, p.Filename...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(p.Secret)))
	out = append(out, p.Secret...)
	return out, nil
}

// EncodePayload builds the wire form of a named secret.
func EncodePayload(filename string, secret []byte) ([]byte, error) {
	p := &Payload{Filename: filename, Secret: secret}
	return p.Marshal()
}

// Source hands out successive payload bytes. The bitstream reader and plain
// byte slices both satisfy it.
type Source interface {
	Next(n int) ([]byte, error)
	Remaining() int
}

// ReadPayload parses a payload from src, pulling only as many bytes as the
// length fields declare.
func ReadPayload(src Source) (*Payload, error) {
	if src.Remaining() < MinPayloadLen {
		return nil, fmt.Errorf("%w: data too short (%d bytes)", ErrCorruptData, src.Remaining())
	}

	lenByte, err := src.Next(1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}
	nameLen := int(lenByte[0])
	if nameLen == 0 {
		return nil, fmt.Errorf("%w: filename length is zero", ErrCorruptData)
	}
	if src.Remaining() < nameLen+secretLenSize {
		return nil, fmt.Errorf("%w: header truncated (need %d bytes, have %d)", ErrCorruptData, nameLen+secretLenSize, src.Remaining())
	}

	name, err := src.Next(nameLen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}
	lenField, err := src.Next(secretLenSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}

	secretLen := binary.LittleEndian.Uint32(lenField)
	if uint64(secretLen) > uint64(src.Remaining()) {
		return nil, fmt.Errorf("%w: secret truncated (declared %d bytes, %d available)", ErrCorruptData, secretLen, src.Remaining())
	}
	secret, err := src.Next(int(secretLen))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}

	return &Payload{Filename: string(name), Secret: secret}, nil
}

// DecodePayload parses a payload from a complete buffer. Trailing bytes after
// the secret are ignored, as an extracted buffer is padded to whole blocks.
func DecodePayload(buf []byte) (*Payload, error) {
	return ReadPayload(&sliceSource{buf: buf})
}

type sliceSource struct {
	buf []byte
}

func (s *sliceSource) Next(n int) ([]byte, error) {
	if n > len(s.buf) {
		return nil, fmt.Errorf("want %d bytes, %d left", n, len(s.buf))
	}
	out := s.buf[:n:n]
	s.buf = s.buf[n:]
	return out, nil
}

func (s *sliceSource) Remaining() int {
	return len(s.buf)
}
