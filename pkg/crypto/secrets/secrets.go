package secrets

import (
	"crypto/rand"
	"fmt"
)

// Secret wraps sensitive bytes: the scatter sealing key or a user's password.
// Destroy zeroes the memory once the operation that needed it is done.
type Secret struct {
	data []byte
}

// NewSecret generates a cryptographically secure random key of the specified size.
func NewSecret(size int) (*Secret, error) {
	key := make([]byte, size)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate random secret: %w", err)
	}
	return &Secret{data: key}, nil
}

// WrapSecret takes ownership of data. The caller must not keep using the slice.
func WrapSecret(data []byte) *Secret {
	return &Secret{data: data}
}

// NewPassword copies a password typed on the command line, read from a
// terminal or taken from a form field.
func NewPassword(password string) *Secret {
	return &Secret{data: []byte(password)}
}

// Bytes returns the raw bytes of the secret.
func (s *Secret) Bytes() []byte {
	if s == nil {
		return nil
	}
	return s.data
}

// String returns the secret as a password string. The copy it makes is not
// zeroed by Destroy.
func (s *Secret) String() string {
	return string(s.Bytes())
}

// Empty reports whether there is no secret material.
func (s *Secret) Empty() bool {
	return len(s.Bytes()) == 0
}

// Destroy overwrites the secret data with zeros. It is idempotent and safe on nil.
func (s *Secret) Destroy() {
	if s == nil || s.data == nil {
		return
	}
	clear(s.data)
	s.data = nil
}
