package format

import (
	"encoding/json"
	"fmt"
	"io"
)

// Writer serializes shard records.
type Writer struct {
	w io.Writer
}

// NewWriter creates a new Writer around an io.Writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write emits the banner, the JSON header and the shard bytes.
func (sw *Writer) Write(header *ShardHeader, content []byte) error {
	// 1. Validate the header before writing anything
	if err := header.Validate(); err != nil {
		return fmt.Errorf("invalid header: %w", err)
	}

	// 2. Banner. Threshold-1 is how many *more* shards the reader needs.
	banner := fmt.Sprintf(MagicHeader, header.Index, header.Total, header.Threshold-1)
	if _, err := fmt.Fprint(sw.w, banner); err != nil {
		return fmt.Errorf("failed to write magic header: %w", err)
	}

	// 3. Header marker and JSON
	if _, err := fmt.Fprintln(sw.w, HeaderMarker); err != nil {
		return fmt.Errorf("failed to write header marker: %w", err)
	}
	headerBytes, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	if _, err := sw.w.Write(headerBytes); err != nil {
		return fmt.Errorf("failed to write json header: %w", err)
	}
	if _, err := fmt.Fprintln(sw.w); err != nil {
		return err
	}

	// 4. Body marker and shard bytes
	if _, err := fmt.Fprintln(sw.w, BodyMarker); err != nil {
		return fmt.Errorf("failed to write body marker: %w", err)
	}
	if _, err := sw.w.Write(content); err != nil {
		return fmt.Errorf("failed to write content: %w", err)
	}

	return nil
}
