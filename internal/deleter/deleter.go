// Package deleter removes destination objects in bounded batches.
package deleter

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketdeploy/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketdeploy/internal/fingerprint"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketdeploy/internal/s3api"
)

// MaxBatchSize is the S3 DeleteObjects per-request object limit.
const MaxBatchSize = 1000

// Deleter issues quiet batch deletes against a destination bucket.
type Deleter struct {
	s3Client s3api.S3API
}

// New creates a new Deleter instance.
func New(s3Client s3api.S3API) *Deleter {
	return &Deleter{
		s3Client: s3Client,
	}
}

// DeleteBatch removes the given keys from bucket in sequential batches of
// at most MaxBatchSize, normalizing path separators. An empty key list is
// a no-op. The context is checked before each batch so cancellation takes
// effect at a batch boundary. Returns the number of keys submitted.
func (d *Deleter) DeleteBatch(ctx context.Context, bucket string, keys []string) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	deleted := 0
	for start := 0; start < len(keys); start += MaxBatchSize {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}

		end := start + MaxBatchSize
		if end > len(keys) {
			end = len(keys)
		}
		batch := keys[start:end]

		identifiers := make([]types.ObjectIdentifier, 0, len(batch))
		for _, key := range batch {
			identifiers = append(identifiers, types.ObjectIdentifier{
				Key: aws.String(fingerprint.NormalizePath(key)),
			})
		}

		_, err := d.s3Client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(bucket),
			Delete: &types.Delete{
				Objects: identifiers,
				Quiet:   aws.Bool(true),
			},
		})
		if err != nil {
			return deleted, errors.NewError("deleteBatch", err).WithBucket(bucket)
		}
		deleted += len(batch)
	}

	return deleted, nil
}
