package manifest

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketdeploy/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketdeploy/internal/s3api"
)

// ContentType is the MIME type of serialized manifest objects.
const ContentType = "application/zip"

// Store reads and writes manifests in a dedicated manifest bucket. One
// manifest exists per active (destination bucket, source key) pair, at
// {manifestBucket}/{destinationBucket}/{sourceKey}.
type Store struct {
	s3Client s3api.S3API
	bucket   string
	logger   *slog.Logger
}

// NewStore creates a manifest store backed by the given bucket.
// A nil logger falls back to slog.Default().
func NewStore(s3Client s3api.S3API, bucket string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		s3Client: s3Client,
		bucket:   bucket,
		logger:   logger,
	}
}

// Key returns the manifest object key for a (destination bucket, source
// key) pair.
func (s *Store) Key(destinationBucket, sourceKey string) string {
	return destinationBucket + "/" + sourceKey
}

// Save serializes and writes the manifest for the pair, overwriting any
// previous manifest. Saving is always the final step of a
// reconciliation, so a persisted manifest reflects a fully applied state.
func (s *Store) Save(ctx context.Context, destinationBucket, sourceKey string, m *Manifest) error {
	data, err := m.Encode()
	if err != nil {
		return errors.NewObjectError("saveManifest", s.bucket, s.Key(destinationBucket, sourceKey), err)
	}

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.Key(destinationBucket, sourceKey)),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(ContentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return errors.NewObjectError("saveManifest", s.bucket, s.Key(destinationBucket, sourceKey), err)
	}
	return nil
}

// Consume reads, parses, and then deletes the manifest for the pair.
// Deletion failure is logged and swallowed: an orphaned manifest object
// is overwritten by the next reconciliation, while failing the call here
// would abort an otherwise valid one. A missing manifest returns
// ErrManifestNotFound.
func (s *Store) Consume(ctx context.Context, destinationBucket, sourceKey string) (*Manifest, error) {
	key := s.Key(destinationBucket, sourceKey)

	output, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isObjectNotFound(err) {
			return nil, errors.NewObjectError("loadManifest", s.bucket, key, errors.ErrManifestNotFound)
		}
		return nil, errors.NewObjectError("loadManifest", s.bucket, key, err)
	}
	defer output.Body.Close()

	data, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, errors.NewObjectError("loadManifest", s.bucket, key, err)
	}

	m, err := Decode(data)
	if err != nil {
		return nil, errors.NewObjectError("loadManifest", s.bucket, key, err)
	}

	if _, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		s.logger.Warn("failed to delete manifest after read",
			"bucket", s.bucket,
			"key", key,
			"error", err)
	}

	return m, nil
}

// isObjectNotFound checks if an error indicates a missing S3 object
func isObjectNotFound(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "NoSuchKey") || strings.Contains(msg, "NotFound")
}
