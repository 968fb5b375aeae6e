// Package encoding selects and applies the byte transform configured for
// a deployment: identity, gzip, or brotli. The chosen encoding is part of
// every entry fingerprint and determines the Content-Encoding header set
// on uploads.
package encoding

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
)

// Encoding identifies the byte transform applied to package entries
// before upload. The zero value is None.
type Encoding uint8

const (
	// None uploads entry bytes unchanged.
	None Encoding = iota

	// Gzip compresses entries with gzip at maximum compression and sets
	// Content-Encoding: gzip on the upload.
	Gzip

	// Brotli compresses entries with brotli at maximum quality and sets
	// Content-Encoding: br on the upload.
	Brotli
)

// Parse maps a request encoding value to an Encoding. Matching is
// case-insensitive and the empty string means None. The second return
// value is false when the value is unrecognized; callers log a warning
// and fall back to None.
func Parse(s string) (Encoding, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "NONE":
		return None, true
	case "GZIP":
		return Gzip, true
	case "BROTLI":
		return Brotli, true
	default:
		return None, false
	}
}

// String returns the canonical lowercase name of the encoding. This name
// is the fingerprint suffix, so changing it invalidates every persisted
// manifest.
func (e Encoding) String() string {
	switch e {
	case None:
		return "none"
	case Gzip:
		return "gzip"
	case Brotli:
		return "brotli"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(e))
	}
}

// ContentEncoding returns the HTTP Content-Encoding token for the
// encoding, or the empty string for None.
func (e Encoding) ContentEncoding() string {
	switch e {
	case Gzip:
		return "gzip"
	case Brotli:
		return "br"
	default:
		return ""
	}
}

// Encode applies the transform to data and returns the resulting bytes.
// None returns the input unchanged without copying.
func (e Encoding) Encode(data []byte) ([]byte, error) {
	switch e {
	case None:
		return data, nil
	case Gzip:
		var buf bytes.Buffer
		w, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
		if err != nil {
			return nil, fmt.Errorf("gzip encode: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("gzip encode: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("gzip encode: %w", err)
		}
		return buf.Bytes(), nil
	case Brotli:
		var buf bytes.Buffer
		w := brotli.NewWriterLevel(&buf, brotli.BestCompression)
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("brotli encode: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("brotli encode: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown encoding: %d", uint8(e))
	}
}
