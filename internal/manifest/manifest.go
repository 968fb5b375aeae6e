// Package manifest persists the mapping of entry path to fingerprint
// that a reconciliation wrote. The manifest is the sole record of which
// destination objects this module owns: Update diffs against it, Delete
// tears down from it, and objects it does not track are never touched.
package manifest

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// EntryName is the name of the single file inside the manifest archive.
const EntryName = "manifest.txt"

// Manifest is an ordered mapping of normalized entry path to fingerprint.
// Insertion order is preserved so serialized manifests are stable across
// identical reconciliations.
type Manifest struct {
	paths  []string
	hashes map[string]string
}

// New returns an empty manifest.
func New() *Manifest {
	return &Manifest{
		hashes: make(map[string]string),
	}
}

// Set records the fingerprint for a path, overwriting any previous value.
func (m *Manifest) Set(path, hash string) {
	if _, ok := m.hashes[path]; !ok {
		m.paths = append(m.paths, path)
	}
	m.hashes[path] = hash
}

// Hash returns the fingerprint recorded for a path.
func (m *Manifest) Hash(path string) (string, bool) {
	hash, ok := m.hashes[path]
	return hash, ok
}

// Contains reports whether the manifest tracks a path.
func (m *Manifest) Contains(path string) bool {
	_, ok := m.hashes[path]
	return ok
}

// Paths returns the tracked paths in insertion order.
func (m *Manifest) Paths() []string {
	out := make([]string, len(m.paths))
	copy(out, m.paths)
	return out
}

// Len returns the number of tracked paths.
func (m *Manifest) Len() int {
	return len(m.paths)
}

// Diff returns the paths tracked by m that are absent from other. These
// are the destination objects a successful Update must remove.
func (m *Manifest) Diff(other *Manifest) []string {
	var stale []string
	for _, path := range m.paths {
		if !other.Contains(path) {
			stale = append(stale, path)
		}
	}
	return stale
}

// Encode serializes the manifest as newline-separated "path\tfingerprint"
// records inside a single-entry zip archive named manifest.txt.
func (m *Manifest) Encode() ([]byte, error) {
	var body strings.Builder
	for _, path := range m.paths {
		body.WriteString(path)
		body.WriteByte('\t')
		body.WriteString(m.hashes[path])
		body.WriteByte('\n')
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(EntryName)
	if err != nil {
		return nil, fmt.Errorf("create manifest entry: %w", err)
	}
	if _, err := io.WriteString(w, body.String()); err != nil {
		return nil, fmt.Errorf("write manifest entry: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close manifest archive: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a serialized manifest produced by Encode. Lines that are
// empty are ignored; any other malformed line is an error, since a
// corrupt manifest must not silently shrink the tracked object set.
func Decode(data []byte) (*Manifest, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open manifest archive: %w", err)
	}

	var entry *zip.File
	for _, f := range zr.File {
		if f.Name == EntryName {
			entry = f
			break
		}
	}
	if entry == nil {
		return nil, fmt.Errorf("manifest archive missing %s", EntryName)
	}

	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("open manifest entry: %w", err)
	}
	defer rc.Close()

	body, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read manifest entry: %w", err)
	}

	m := New()
	for _, line := range strings.Split(string(body), "\n") {
		if line == "" {
			continue
		}
		path, hash, ok := strings.Cut(line, "\t")
		if !ok || path == "" {
			return nil, fmt.Errorf("malformed manifest record: %q", line)
		}
		m.Set(path, hash)
	}
	return m, nil
}
