// Package pipeline is the single embed/extract entry point shared by the CLI,
// the interactive browser and the HTTP service.
package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Beastly713/bpcs/pkg/bitmap"
	"github.com/Beastly713/bpcs/pkg/bpcs"
	"github.com/Beastly713/bpcs/pkg/crypto/vigenere"
	"github.com/Beastly713/bpcs/pkg/format"
)

// Config selects the optional stages of an operation. Embed and extract must
// be run with the same values.
type Config struct {
	// Threshold is the minimum block complexity. Zero means bpcs.DefaultThreshold.
	Threshold int

	// Encrypt applies the substitution cipher keyed by Password to the payload.
	Encrypt bool

	// Randomize shuffles the eligible blocks with a seed derived from Password.
	Randomize bool

	Password string

	// Logger receives debug events. Nil discards them.
	Logger *zerolog.Logger
}

func (c Config) threshold() (int, error) {
	switch {
	case c.Threshold == 0:
		return bpcs.DefaultThreshold, nil
	case c.Threshold < 0 || c.Threshold > bpcs.MaxComplexity:
		return 0, fmt.Errorf("threshold %d out of range 1..%d", c.Threshold, bpcs.MaxComplexity)
	}
	return c.Threshold, nil
}

func (c Config) logger() *zerolog.Logger {
	if c.Logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return c.Logger
}

// key is the cipher key, or nil when the cipher stage is off.
func (c Config) key() []byte {
	if !c.Encrypt || c.Password == "" {
		return nil
	}
	return []byte(c.Password)
}

// shuffled reports whether the block order depends on the password.
func (c Config) shuffled() bool {
	return c.Randomize && c.Password != ""
}

// order scores img and returns its eligible blocks in the order the
// bitstream visits them.
func (c Config) order(img *bitmap.Image, threshold int) []bpcs.BlockPosition {
	blocks := bpcs.NewAnalysis(img).Select(threshold)
	if c.shuffled() {
		bpcs.Shuffle(blocks, bpcs.SeedFromPassword(c.Password))
	}
	return blocks
}

// Embed hides secret under filename in a copy of cover. The cover itself is
// never modified; on failure no image is produced.
func Embed(ctx context.Context, cover *bitmap.Image, filename string, secret []byte, cfg Config) (*Result, error) {
	log := cfg.logger()

	threshold, err := cfg.threshold()
	if err != nil {
		return nil, err
	}

	// 1. Build the payload
	payload, err := format.EncodePayload(filename, secret)
	if err != nil {
		return nil, err
	}
	if key := cfg.key(); key != nil {
		payload = vigenere.Transform(payload, key, vigenere.Encrypt)
	}

	// 2. Select and order blocks on the pristine cover
	blocks := cfg.order(cover, threshold)
	log.Debug().
		Int("eligible", len(blocks)).
		Int("threshold", threshold).
		Bool("randomize", cfg.Randomize).
		Msg("blocks selected")

	if err := bpcs.CheckCapacity(blocks, len(payload)*8); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 3. Write the bitstream into a working copy. In canonical order a block
	// that drops below the threshold can simply be skipped; a shuffled order
	// is derived from the eligible count, so there it is fatal.
	stego := cover.Clone()
	var touched []bpcs.BlockPosition
	if cfg.shuffled() {
		touched, err = bpcs.Embed(stego, blocks, payload)
		if err == nil {
			err = bpcs.CheckDrift(stego, touched, threshold)
		}
	} else {
		touched, err = bpcs.EmbedSkipping(stego, blocks, payload, threshold)
	}
	if err != nil {
		return nil, err
	}
	log.Debug().
		Int("payload_bytes", len(payload)).
		Int("blocks_used", len(touched)).
		Msg("payload written")

	// 4. Measure what it cost
	d, err := bpcs.MeasureDistortion(cover, stego)
	if err != nil {
		return nil, err
	}
	log.Debug().Float64("mse", d.MSE).Float64("psnr", d.PSNR).Msg("distortion measured")

	return &Result{
		Kind:     Success,
		Image:    stego,
		Filename: filename,
		Secret:   secret,
		PSNR:     d.PSNR,
		MaxBytes: bpcs.CapacityBits(blocks) / 8,
	}, nil
}

// Extract recovers the named secret from a stego image. Blocks are read only
// as far as the payload's length fields require.
func Extract(ctx context.Context, stego *bitmap.Image, cfg Config) (*Result, error) {
	log := cfg.logger()

	threshold, err := cfg.threshold()
	if err != nil {
		return nil, err
	}

	blocks := cfg.order(stego, threshold)
	log.Debug().Int("eligible", len(blocks)).Int("threshold", threshold).Msg("blocks selected")
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var src format.Source = bpcs.NewReader(stego, blocks)
	if key := cfg.key(); key != nil {
		src = &decryptingSource{r: src.(*bpcs.Reader), key: key}
	}

	p, err := format.ReadPayload(src)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("filename", p.Filename).Int("bytes", len(p.Secret)).Msg("payload recovered")

	return &Result{
		Kind:     Success,
		Filename: p.Filename,
		Secret:   p.Secret,
		MaxBytes: bpcs.CapacityBits(blocks) / 8,
	}, nil
}

// decryptingSource undoes the cipher as bytes come off the bitstream.
type decryptingSource struct {
	r   *bpcs.Reader
	key []byte
}

func (d *decryptingSource) Next(n int) ([]byte, error) {
	offset := d.r.Offset()
	b, err := d.r.Next(n)
	if err != nil {
		return nil, err
	}
	return vigenere.TransformAt(b, d.key, offset, vigenere.Decrypt), nil
}

func (d *decryptingSource) Remaining() int {
	return d.r.Remaining()
}
