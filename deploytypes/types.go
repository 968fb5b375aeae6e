// Package deploytypes contains the public types used by the bucketdeploy
// module: the per-invocation request, the operation result, and the
// client configuration consumed by functional options.
package deploytypes

import (
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
)

// PackageRequest identifies one archive-to-destination mapping.
// It is immutable for the duration of a reconciliation call.
type PackageRequest struct {
	// SourceBucket is the bucket holding the zip package.
	SourceBucket string

	// SourceKey is the object key of the zip package.
	SourceKey string

	// DestinationBucket is the bucket the package contents are written to.
	DestinationBucket string

	// DestinationKey is the key prefix under which entries are written.
	DestinationKey string

	// Encoding selects the byte transform applied to every entry.
	// One of "NONE", "GZIP", "BROTLI" (case-insensitive). Empty or
	// unrecognized values fall back to NONE.
	Encoding string
}

// Result describes the outcome of a reconciliation call.
type Result struct {
	// PhysicalResourceID encodes the destination bucket and key prefix.
	// Empty for a Delete that found no prior state.
	PhysicalResourceID string

	// URL is the HTTPS URL of the destination key prefix.
	URL string

	// EntriesWritten is the number of destination objects uploaded.
	EntriesWritten int

	// EntriesSkipped is the number of entries left untouched because
	// their fingerprint matched the previous manifest.
	EntriesSkipped int

	// ObjectsDeleted is the number of stale destination objects removed.
	ObjectsDeleted int

	// Duration is the total time the reconciliation took.
	Duration time.Duration
}

// ClientConfig holds the configuration produced by functional options.
type ClientConfig struct {
	// Region is the AWS region for S3 operations
	Region string

	// MaxRetries is the maximum number of retry attempts
	MaxRetries int

	// Timeout for individual S3 operations (0 means no timeout)
	Timeout time.Duration

	// ForcePathStyle forces path-style S3 URLs
	ForcePathStyle bool

	// CustomAWSConfig overrides the default AWS configuration loading
	CustomAWSConfig *aws.Config

	// Filesystem is the filesystem abstraction used for transient files
	Filesystem fs.Filesystem

	// Logger receives structured logs; defaults to slog.Default()
	Logger *slog.Logger

	// ManifestBucket is the bucket holding deployment manifests
	ManifestBucket string
}

// Option is a functional option for configuring the client.
type Option func(*ClientConfig)
