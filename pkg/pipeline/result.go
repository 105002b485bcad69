package pipeline

import (
	"context"
	"errors"
	"io/fs"

	"github.com/Beastly713/bpcs/pkg/bitmap"
	"github.com/Beastly713/bpcs/pkg/bpcs"
	"github.com/Beastly713/bpcs/pkg/format"
)

// Kind is the outcome class of an operation, as front ends report it.
type Kind int

const (
	Success Kind = iota
	CapacityExceeded
	CorruptData
	UnsupportedFormat
	IoError
	// Failed covers bad arguments and cancellation.
	Failed
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case CapacityExceeded:
		return "capacity exceeded"
	case CorruptData:
		return "corrupt data"
	case UnsupportedFormat:
		return "unsupported format"
	case IoError:
		return "i/o error"
	default:
		return "failed"
	}
}

// Result is the structured outcome of an embed or extract.
type Result struct {
	Kind Kind

	// Image is the stego image produced by an embed.
	Image *bitmap.Image

	// Filename and Secret are the hidden file.
	Filename string
	Secret   []byte

	// PSNR of the stego image against its cover, in dB.
	PSNR float64

	// MaxBytes is the payload capacity of the carrier.
	MaxBytes int

	// Reason is a human readable explanation of a failure.
	Reason string
}

// DriftHint tells the user how to get past ErrSelectionDrift: a lower
// threshold accepts the block, and the cipher changes its bits.
const DriftHint = "lower the threshold, or enable encryption with a password"

// Classify maps an error returned by this package onto a Result.
func Classify(err error) Result {
	if err == nil {
		return Result{Kind: Success}
	}
	r := Result{Kind: Failed, Reason: err.Error()}

	var capErr *bpcs.CapacityError
	switch {
	case errors.As(err, &capErr):
		r.Kind = CapacityExceeded
		r.MaxBytes = capErr.MaxBytes()
	case errors.Is(err, bpcs.ErrCapacityExceeded):
		r.Kind = CapacityExceeded
	case errors.Is(err, bitmap.ErrUnsupportedFormat):
		r.Kind = UnsupportedFormat
	case errors.Is(err, bpcs.ErrSelectionDrift):
		r.Kind = CorruptData
		r.Reason = err.Error() + " (" + DriftHint + ")"
	case errors.Is(err, format.ErrCorruptData),
		errors.Is(err, format.ErrInvalidFilename),
		errors.Is(err, ErrShardMismatch):
		r.Kind = CorruptData
	case errors.Is(err, bpcs.ErrZeroDistortion):
		r.Kind = CorruptData
		r.Reason = "no pixels changed: " + err.Error()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		r.Kind = Failed
	default:
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			r.Kind = IoError
		}
	}
	return r
}
