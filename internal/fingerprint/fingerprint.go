// Package fingerprint computes the content fingerprints that drive
// incremental reconciliation. A fingerprint covers an entry's normalized
// path, its raw bytes, and the configured encoding, so a change to any of
// the three forces a re-upload.
package fingerprint

import (
	"crypto/md5" //nolint:gosec // change detection and Content-MD5, not security
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketdeploy/internal/encoding"
)

// NormalizePath converts backslashes to forward slashes so fingerprints
// and destination keys are identical regardless of the platform that
// produced the package.
func NormalizePath(path string) string {
	return strings.ReplaceAll(path, "\\", "/")
}

// EntryHash returns the fingerprint of one package entry:
// hex(MD5(normalizedPath || content)) + "-" + encoding name. The digest
// covers the raw bytes, not the transformed ones, so re-encoding the same
// content under a different encoding still changes the fingerprint via
// the suffix.
func EntryHash(path string, content []byte, enc encoding.Encoding) string {
	h := md5.New()
	h.Write([]byte(NormalizePath(path)))
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil)) + "-" + enc.String()
}

// ContentMD5 returns base64(MD5(data)) over the transformed bytes, used
// as the Content-MD5 integrity header on uploads. It is deliberately a
// different digest from EntryHash and never appears in manifests.
func ContentMD5(data []byte) string {
	sum := md5.Sum(data)
	return base64.StdEncoding.EncodeToString(sum[:])
}
