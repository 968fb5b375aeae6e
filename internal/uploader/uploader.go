// Package uploader writes transformed package entries to destination
// objects. Each upload carries a Content-MD5 integrity digest, a sniffed
// Content-Type, and a Content-Encoding header when the entry bytes were
// compressed.
package uploader

import (
	"bytes"
	"context"
	"mime"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"

	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketdeploy/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketdeploy/internal/fingerprint"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketdeploy/internal/s3api"
)

// DefaultContentType is used when content type detection fails.
const DefaultContentType = "application/octet-stream"

// Object describes one destination upload.
type Object struct {
	// Bucket is the destination bucket.
	Bucket string

	// Key is the full destination key, already prefix-joined.
	Key string

	// Body holds the (possibly transformed) entry bytes.
	Body []byte

	// ContentType is the MIME type of the raw entry content.
	ContentType string

	// ContentEncoding is the HTTP encoding token, empty for identity.
	ContentEncoding string

	// ContentMD5 is base64(MD5(Body)), the upload integrity digest.
	ContentMD5 string
}

// Uploader performs single PutObject uploads. Package entries are
// bounded by Lambda package limits, so there is no multipart path; SDK
// retry policy is the only retry layer.
type Uploader struct {
	s3Client s3api.S3API
}

// New creates a new Uploader instance.
func New(s3Client s3api.S3API) *Uploader {
	return &Uploader{
		s3Client: s3Client,
	}
}

// Put uploads one object. Failures propagate and abort the whole
// reconciliation.
func (u *Uploader) Put(ctx context.Context, obj Object) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(obj.Bucket),
		Key:           aws.String(obj.Key),
		Body:          bytes.NewReader(obj.Body),
		ContentLength: aws.Int64(int64(len(obj.Body))),
		ContentType:   aws.String(obj.ContentType),
		ContentMD5:    aws.String(obj.ContentMD5),
	}
	if obj.ContentEncoding != "" {
		input.ContentEncoding = aws.String(obj.ContentEncoding)
	}

	if _, err := u.s3Client.PutObject(ctx, input); err != nil {
		return errors.NewObjectError("putEntry", obj.Bucket, obj.Key, err)
	}
	return nil
}

// JoinKey joins the destination key prefix and an entry path into a
// destination object key with forward-slash separators.
func JoinKey(destinationKey, entryPath string) string {
	return path.Join(fingerprint.NormalizePath(destinationKey), fingerprint.NormalizePath(entryPath))
}

// DetectContentType determines the content type of an entry from its raw
// bytes, falling back to extension-based lookup and finally to
// application/octet-stream. Detection runs on the untransformed bytes so
// a gzip-encoded HTML entry still uploads as text/html.
func DetectContentType(entryPath string, raw []byte) string {
	if len(raw) > 0 {
		if mt := mimetype.Detect(raw); mt != nil && mt.String() != DefaultContentType {
			return mt.String()
		}
	}

	ext := strings.ToLower(path.Ext(fingerprint.NormalizePath(entryPath)))
	if ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return byExt
		}
	}

	return DefaultContentType
}
