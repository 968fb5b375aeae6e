package testutil

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/require"
)

// StringPtr returns a pointer to the given string.
func StringPtr(s string) *string {
	return aws.String(s)
}

// ZipEntry is one file in a test package archive.
type ZipEntry struct {
	Name    string
	Content []byte
}

// BuildZip assembles a zip archive from entries, in order. The order is
// preserved so tests can rely on deterministic entry iteration.
func BuildZip(t *testing.T, entries ...ZipEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, entry := range entries {
		w, err := zw.Create(entry.Name)
		require.NoError(t, err)
		_, err = w.Write(entry.Content)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}
