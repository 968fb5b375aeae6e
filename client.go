// Package bucketdeploy provides client initialization and configuration.
package bucketdeploy

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"

	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketdeploy/deploytypes"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketdeploy/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketdeploy/internal/s3api"
)

// manifestBucketEnv is the environment variable the Lambda deployment
// uses to configure the manifest bucket.
const manifestBucketEnv = "MANIFEST_BUCKET"

// Client reconciles package contents against a destination bucket.
// Each reconciliation call is fully parameterized by its inputs; the
// client holds no per-call mutable state.
type Client struct {
	// s3Client is the underlying AWS SDK S3 client
	s3Client s3api.S3API

	// config holds the AWS configuration
	config aws.Config

	// fs is the filesystem abstraction for transient package files
	fs fs.Filesystem

	// logger receives structured logs
	logger *slog.Logger

	// manifestBucket holds deployment manifests, one per
	// (destination bucket, source key) pair
	manifestBucket string

	// region is the effective AWS region, used for destination URLs
	region string
}

// New creates a new deployment client with the provided options.
// It loads AWS credentials using the default credential chain and reads
// the manifest bucket from MANIFEST_BUCKET unless WithManifestBucket is
// given.
//
// Example:
//
//	client, err := bucketdeploy.New(
//	    bucketdeploy.WithRegion("us-west-2"),
//	    bucketdeploy.WithManifestBucket("deploy-manifests"),
//	)
func New(opts ...deploytypes.Option) (*Client, error) {
	clientCfg := &deploytypes.ClientConfig{
		MaxRetries: 3,
	}
	for _, opt := range opts {
		opt(clientCfg)
	}

	var cfg aws.Config
	var err error

	if clientCfg.CustomAWSConfig != nil {
		cfg = *clientCfg.CustomAWSConfig
	} else {
		cfg, err = config.LoadDefaultConfig(context.Background())
		if err != nil {
			return nil, errors.NewError("client initialization", err)
		}
	}

	if clientCfg.Region != "" {
		cfg.Region = clientCfg.Region
	} else if cfg.Region == "" {
		cfg.Region = "us-east-1" // AWS default region
	}

	if clientCfg.MaxRetries > 0 {
		cfg.RetryMaxAttempts = clientCfg.MaxRetries
	}

	var s3Opts []func(*s3.Options)
	if clientCfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}
	if clientCfg.Timeout > 0 {
		httpClient := &http.Client{
			Timeout: clientCfg.Timeout,
		}
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	}

	manifestBucket := clientCfg.ManifestBucket
	if manifestBucket == "" {
		manifestBucket = os.Getenv(manifestBucketEnv)
	}
	if manifestBucket == "" {
		return nil, errors.NewError("client initialization", errors.ErrInvalidInput).
			WithMessage("manifest bucket not configured")
	}

	filesystem := clientCfg.Filesystem
	if filesystem == nil {
		filesystem = billy.NewOSFS("/")
	}

	logger := clientCfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		s3Client:       s3.NewFromConfig(cfg, s3Opts...),
		config:         cfg,
		fs:             filesystem,
		logger:         logger,
		manifestBucket: manifestBucket,
		region:         cfg.Region,
	}, nil
}

// NewWithClient creates a deployment client with a custom S3API
// implementation. This is primarily used for testing with mocked or
// in-memory clients.
func NewWithClient(s3Client s3api.S3API, manifestBucket string, opts ...deploytypes.Option) *Client {
	clientCfg := &deploytypes.ClientConfig{}
	for _, opt := range opts {
		opt(clientCfg)
	}

	filesystem := clientCfg.Filesystem
	if filesystem == nil {
		filesystem = billy.NewOSFS("/")
	}
	logger := clientCfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		s3Client:       s3Client,
		config:         aws.Config{},
		fs:             filesystem,
		logger:         logger,
		manifestBucket: manifestBucket,
		region:         clientCfg.Region,
	}
}

// SetFilesystem sets the filesystem implementation for the client.
// This is useful for testing with an in-memory filesystem.
func (c *Client) SetFilesystem(filesystem fs.Filesystem) {
	c.fs = filesystem
}
