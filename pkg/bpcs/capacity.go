package bpcs

import (
	"errors"
	"fmt"
)

// ErrCapacityExceeded indicates the carrier has too few eligible blocks.
var ErrCapacityExceeded = errors.New("payload too large for carrier image")

// CapacityError reports how much room the carrier actually has.
type CapacityError struct {
	RequiredBits int
	CapacityBits int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%v: need %d bytes, maximum capacity is %d bytes",
		ErrCapacityExceeded, (e.RequiredBits+7)/8, e.MaxBytes())
}

func (e *CapacityError) Unwrap() error {
	return ErrCapacityExceeded
}

// MaxBytes is the largest payload, in bytes, the carrier accepts.
func (e *CapacityError) MaxBytes() int {
	return e.CapacityBits / 8
}

// CapacityBits is 64 bits per eligible block.
func CapacityBits(blocks []BlockPosition) int {
	return len(blocks) * BlockBits
}

// CheckCapacity fails with a *CapacityError when requiredBits do not fit.
func CheckCapacity(blocks []BlockPosition, requiredBits int) error {
	if capBits := CapacityBits(blocks); requiredBits > capBits {
		return &CapacityError{RequiredBits: requiredBits, CapacityBits: capBits}
	}
	return nil
}
