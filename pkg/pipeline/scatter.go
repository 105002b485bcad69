package pipeline

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Beastly713/bpcs/pkg/bitmap"
	"github.com/Beastly713/bpcs/pkg/bpcs"
	"github.com/Beastly713/bpcs/pkg/compression"
	"github.com/Beastly713/bpcs/pkg/crypto/encryptor"
	"github.com/Beastly713/bpcs/pkg/crypto/secrets"
	"github.com/Beastly713/bpcs/pkg/format"
	"github.com/Beastly713/bpcs/pkg/shamir"
	"github.com/Beastly713/bpcs/pkg/sharding"
)

// ShardSuffix marks payloads that carry a shard record.
const ShardSuffix = ".shard"

// maxSaltAttempts bounds how often a cover is retried with its record shifted.
const maxSaltAttempts = 16

// ErrShardMismatch means the recovered shards cannot be assembled.
var ErrShardMismatch = errors.New("shards do not form a recoverable set")

// ScatterConfig controls how a secret is spread over several covers.
type ScatterConfig struct {
	// Threshold is the number of stego images needed to recover the secret.
	Threshold int

	// Timestamp identifies the run. Zero means the current time.
	Timestamp int64

	// Compression is the codec applied before sealing: "gzip" (default) or "zstd".
	Compression string

	// OnEmbedded is called after each cover has been written.
	OnEmbedded func(index int, r *Result)
}

// Shard is a shard record recovered from one stego image.
type Shard struct {
	Header *format.ShardHeader
	Data   []byte
}

// Scatter seals secret and spreads it across covers so that any
// sc.Threshold of the resulting stego images recover it. Every cover is
// embedded with cfg; results are returned in cover order.
func Scatter(ctx context.Context, covers []*bitmap.Image, filename string, secret []byte, sc ScatterConfig, cfg Config) ([]*Result, error) {
	total := len(covers)
	if sc.Threshold < 2 || sc.Threshold > total {
		return nil, fmt.Errorf("threshold must be between 2 and the number of covers (%d), got %d", total, sc.Threshold)
	}
	if len(secret) == 0 {
		return nil, errors.New("cannot scatter an empty file")
	}
	ts := sc.Timestamp
	if ts == 0 {
		ts = time.Now().Unix()
	}
	template := format.ShardHeader{
		OriginalFilename: filename,
		Timestamp:        ts,
		Total:            total,
		Threshold:        sc.Threshold,
		Compression:      sc.Compression,
	}

	// 1. Compress
	codec, err := compression.New(sc.Compression)
	if err != nil {
		return nil, err
	}
	compressed, err := codec.Compress(secret)
	if err != nil {
		return nil, fmt.Errorf("compression failed: %w", err)
	}

	// 2. Seal with a fresh key bound to this run
	key, err := secrets.NewSecret(encryptor.KeySize)
	if err != nil {
		return nil, err
	}
	defer key.Destroy()

	sealed, err := encryptor.Encrypt(compressed, key.Bytes(), []byte(template.GroupID()))
	if err != nil {
		return nil, fmt.Errorf("encryption failed: %w", err)
	}
	template.Size = len(sealed)

	// 3. Erasure-code the sealed stream and split the key
	splitter, err := sharding.NewSplitter(total, sc.Threshold)
	if err != nil {
		return nil, err
	}
	shards, err := splitter.Split(sealed)
	if err != nil {
		return nil, fmt.Errorf("sharding failed: %w", err)
	}
	fragments, err := shamir.Split(key.Bytes(), total, sc.Threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to split key: %w", err)
	}

	// 4. Hide one record per cover
	results := make([]*Result, total)
	for i, cover := range covers {
		header := template
		header.Index = i + 1
		header.KeyFragment = fragments[i]

		r, err := embedShard(ctx, cover, &header, shards[i].Data, cfg)
		if err != nil {
			return nil, fmt.Errorf("cover %d: %w", i+1, err)
		}
		results[i] = r
		if sc.OnEmbedded != nil {
			sc.OnEmbedded(i, r)
		}
	}
	return results, nil
}

// embedShard writes one shard record. When the record would drop a block
// below the threshold it is retried behind a few salt bytes, which shifts
// every block boundary.
func embedShard(ctx context.Context, cover *bitmap.Image, header *format.ShardHeader, data []byte, cfg Config) (*Result, error) {
	var record bytes.Buffer
	if err := format.NewWriter(&record).Write(header, data); err != nil {
		return nil, err
	}
	name := header.OriginalFilename + ShardSuffix

	var lastErr error
	for n := 0; n < maxSaltAttempts; n++ {
		salted := append(salt(n), record.Bytes()...)
		r, err := Embed(ctx, cover, name, salted, cfg)
		if err == nil {
			return r, nil
		}
		if !errors.Is(err, bpcs.ErrSelectionDrift) {
			return nil, err
		}
		cfg.logger().Debug().Int("salt", n).Err(err).Msg("retrying shard record")
		lastErr = err
	}
	return nil, lastErr
}

// salt is n random base32 characters placed ahead of the banner. The record
// reader skips anything before the header marker.
func salt(n int) []byte {
	return []byte(rand.Text()[:n])
}

// ExtractShard reads the shard record hidden in one stego image.
func ExtractShard(ctx context.Context, stego *bitmap.Image, cfg Config) (*Shard, error) {
	r, err := Extract(ctx, stego, cfg)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(r.Filename, ShardSuffix) {
		return nil, fmt.Errorf("%w: %q is not a shard record", ErrShardMismatch, r.Filename)
	}

	rec, err := format.NewReader(bytes.NewReader(r.Secret))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShardMismatch, err)
	}
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		return nil, err
	}
	return &Shard{Header: rec.Header, Data: body}, nil
}

// Gather reassembles a scattered secret. Shards from several runs may be
// mixed; the run with the most shards is used.
func Gather(shards []*Shard) (*Result, error) {
	if len(shards) == 0 {
		return nil, fmt.Errorf("%w: no shards found", ErrShardMismatch)
	}

	// 1. Group by run
	groups := make(map[string][]*Shard)
	var best string
	for _, s := range shards {
		id := s.Header.GroupID()
		groups[id] = append(groups[id], s)
		if best == "" || len(groups[id]) > len(groups[best]) {
			best = id
		}
	}
	set := groups[best]
	first := set[0].Header

	// 2. Collect distinct shards and key fragments
	pieces := make(map[int][]byte)
	var fragments [][]byte
	splitter, err := sharding.NewSplitter(first.Total, first.Threshold)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShardMismatch, err)
	}
	shardLen := splitter.ShardSize(first.Size)
	for _, s := range set {
		h := s.Header
		if h.Total != first.Total || h.Threshold != first.Threshold || h.Size != first.Size || h.Compression != first.Compression {
			return nil, fmt.Errorf("%w: shard %d disagrees with shard %d about the set", ErrShardMismatch, h.Index, first.Index)
		}
		if _, dup := pieces[h.Index-1]; dup {
			continue
		}
		if len(s.Data) < shardLen {
			return nil, fmt.Errorf("%w: shard %d is %d bytes, expected %d", ErrShardMismatch, h.Index, len(s.Data), shardLen)
		}
		pieces[h.Index-1] = s.Data[:shardLen]
		fragments = append(fragments, h.KeyFragment)
	}
	if len(pieces) < first.Threshold {
		return nil, fmt.Errorf("%w: have %d of the %d shards needed for %s", ErrShardMismatch, len(pieces), first.Threshold, first.OriginalFilename)
	}

	// 3. Rebuild the key and the sealed stream
	key, err := shamir.Combine(fragments)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShardMismatch, err)
	}
	defer secrets.WrapSecret(key).Destroy()

	sealed, err := splitter.Join(pieces, first.Size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShardMismatch, err)
	}

	// 4. Open and inflate
	compressed, err := encryptor.Decrypt(sealed, key, []byte(best))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShardMismatch, err)
	}
	codec, err := compression.New(first.Compression)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShardMismatch, err)
	}
	plain, err := codec.Decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShardMismatch, err)
	}

	return &Result{
		Kind:     Success,
		Filename: first.OriginalFilename,
		Secret:   plain,
	}, nil
}
