// Package bucketdeploy provides functional options for configuring client
// behavior. These options follow the functional options pattern for
// clean, composable configuration.
package bucketdeploy

import (
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketdeploy/deploytypes"
)

// WithRegion sets the AWS region for S3 operations.
// If not specified, uses the default AWS region from the credential chain.
func WithRegion(region string) deploytypes.Option {
	return func(c *deploytypes.ClientConfig) {
		c.Region = region
	}
}

// WithMaxRetries sets the maximum number of retry attempts for failed
// operations. Default is 3 retries.
func WithMaxRetries(maxRetries int) deploytypes.Option {
	return func(c *deploytypes.ClientConfig) {
		c.MaxRetries = maxRetries
	}
}

// WithTimeout sets the timeout for individual S3 operations.
// Default is no timeout (0). Values should be positive durations.
func WithTimeout(timeout time.Duration) deploytypes.Option {
	return func(c *deploytypes.ClientConfig) {
		c.Timeout = timeout
	}
}

// WithForcePathStyle forces the use of path-style URLs instead of
// virtual-hosted style. This is required for S3-compatible services that
// don't support virtual hosting.
func WithForcePathStyle(forcePathStyle bool) deploytypes.Option {
	return func(c *deploytypes.ClientConfig) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithAWSConfig allows providing a custom AWS configuration.
// This overrides the default configuration loading behavior.
func WithAWSConfig(config *aws.Config) deploytypes.Option {
	return func(c *deploytypes.ClientConfig) {
		c.CustomAWSConfig = config
	}
}

// WithFilesystem sets a custom filesystem implementation for transient
// package files. This allows using in-memory filesystems for testing.
// If not specified, defaults to the OS filesystem.
func WithFilesystem(filesystem fs.Filesystem) deploytypes.Option {
	return func(c *deploytypes.ClientConfig) {
		c.Filesystem = filesystem
	}
}

// WithLogger sets the structured logger used by the client.
// If not specified, defaults to slog.Default().
func WithLogger(logger *slog.Logger) deploytypes.Option {
	return func(c *deploytypes.ClientConfig) {
		c.Logger = logger
	}
}

// WithManifestBucket sets the bucket holding deployment manifests.
// If not specified, the MANIFEST_BUCKET environment variable is used.
func WithManifestBucket(bucket string) deploytypes.Option {
	return func(c *deploytypes.ClientConfig) {
		c.ManifestBucket = bucket
	}
}
