// Package bucketdeploy implements the Create/Update/Delete reconciliation
// operations.
package bucketdeploy

import (
	"context"
	"fmt"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketdeploy/deploytypes"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketdeploy/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketdeploy/internal/archive"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketdeploy/internal/deleter"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketdeploy/internal/encoding"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketdeploy/internal/fingerprint"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketdeploy/internal/manifest"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketdeploy/internal/uploader"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketdeploy/internal/validation"
)

// Create materializes every entry of the source package into the
// destination bucket and writes a fresh manifest tracking what was
// written.
//
// All four bucket/key fields of the request are required; a missing one
// fails with ErrMissingParameter before any I/O. A package that cannot
// be downloaded fails with ErrSourceNotFound. Upload failures propagate
// and abort the call.
func (c *Client) Create(ctx context.Context, req deploytypes.PackageRequest) (*deploytypes.Result, error) {
	if err := validateRequest("create", req, true); err != nil {
		return nil, err
	}
	return c.deploy(ctx, "create", req)
}

// Update reconciles the destination against the new package
// incrementally, using the manifest persisted by the previous
// reconciliation.
//
// If the destination bucket or key differs between previous and current,
// the destination identity changed and no incremental diff is possible:
// Update behaves as Delete(previous) followed by Create(current).
//
// Otherwise the previous manifest is consumed and diffed: entries whose
// fingerprint is unchanged are skipped, new or changed entries are
// uploaded, and tracked objects absent from the new package are
// batch-deleted. A previous manifest that cannot be read is treated as
// absent prior state and Update degrades to Create; this is a recovery
// path, not a failure.
func (c *Client) Update(
	ctx context.Context,
	current, previous deploytypes.PackageRequest,
) (*deploytypes.Result, error) {
	if err := validateRequest("update", current, true); err != nil {
		return nil, err
	}

	if current.DestinationBucket != previous.DestinationBucket ||
		current.DestinationKey != previous.DestinationKey {
		c.logger.Info("destination changed, replacing deployment",
			"oldBucket", previous.DestinationBucket,
			"oldKey", previous.DestinationKey,
			"newBucket", current.DestinationBucket,
			"newKey", current.DestinationKey)
		if _, err := c.Delete(ctx, previous); err != nil {
			return nil, err
		}
		return c.deploy(ctx, "update", current)
	}

	previousManifest, err := c.manifests().Consume(ctx, previous.DestinationBucket, previous.SourceKey)
	if err != nil {
		// A missing manifest is expected on the first reconciliation or
		// after manual cleanup; other read failures are conflated with it
		// on purpose and recovered the same way.
		c.logger.Warn("previous manifest unavailable, falling back to full deployment",
			"destinationBucket", previous.DestinationBucket,
			"sourceKey", previous.SourceKey,
			"error", err)
		return c.deploy(ctx, "update", current)
	}

	return c.update(ctx, current, previousManifest)
}

// Delete removes every destination object tracked by the pair's
// manifest. Only sourceKey, destinationBucketName, and destinationKey
// are required: deletion needs the manifest, not the original package.
// Deleting a pair with no manifest returns an empty success, so Delete
// is idempotent.
func (c *Client) Delete(ctx context.Context, req deploytypes.PackageRequest) (*deploytypes.Result, error) {
	if err := validateRequest("delete", req, false); err != nil {
		return nil, err
	}

	start := time.Now()

	m, err := c.manifests().Consume(ctx, req.DestinationBucket, req.SourceKey)
	if err != nil {
		if errors.IsManifestNotFound(err) {
			c.logger.Info("no manifest found, nothing to delete",
				"destinationBucket", req.DestinationBucket,
				"sourceKey", req.SourceKey)
			return &deploytypes.Result{}, nil
		}
		return nil, err
	}

	keys := make([]string, 0, m.Len())
	for _, path := range m.Paths() {
		keys = append(keys, uploader.JoinKey(req.DestinationKey, path))
	}

	deleted, err := c.deleter().DeleteBatch(ctx, req.DestinationBucket, keys)
	if err != nil {
		return nil, err
	}

	c.logger.Info("deployment deleted",
		"destinationBucket", req.DestinationBucket,
		"destinationKey", req.DestinationKey,
		"objectsDeleted", deleted,
		"duration", time.Since(start))

	return &deploytypes.Result{
		PhysicalResourceID: physicalResourceID(req),
		URL:                c.destinationURL(req),
		ObjectsDeleted:     deleted,
		Duration:           time.Since(start),
	}, nil
}

// deploy uploads every package entry unconditionally and persists a
// fresh manifest. It backs Create and the full-replacement and
// recovery paths of Update.
func (c *Client) deploy(ctx context.Context, op string, req deploytypes.PackageRequest) (*deploytypes.Result, error) {
	start := time.Now()
	enc := c.parseEncoding(req.Encoding)
	m := manifest.New()
	up := c.uploader()

	written := 0
	found, err := c.archive().Walk(ctx, req.SourceBucket, req.SourceKey,
		func(ctx context.Context, name string, content []byte) error {
			path := fingerprint.NormalizePath(name)
			if err := c.putEntry(ctx, up, req, path, content, enc); err != nil {
				return err
			}
			m.Set(path, fingerprint.EntryHash(path, content, enc))
			written++
			return nil
		})
	if err != nil {
		return nil, errors.NewError(op, err).WithBucket(req.SourceBucket).WithKey(req.SourceKey)
	}
	if !found {
		return nil, errors.NewError(op, errors.ErrSourceNotFound).
			WithBucket(req.SourceBucket).
			WithKey(req.SourceKey)
	}

	if err := c.manifests().Save(ctx, req.DestinationBucket, req.SourceKey, m); err != nil {
		return nil, err
	}

	c.logger.Info("deployment applied",
		"op", op,
		"destinationBucket", req.DestinationBucket,
		"destinationKey", req.DestinationKey,
		"entriesWritten", written,
		"duration", time.Since(start))

	return &deploytypes.Result{
		PhysicalResourceID: physicalResourceID(req),
		URL:                c.destinationURL(req),
		EntriesWritten:     written,
		Duration:           time.Since(start),
	}, nil
}

// update performs the incremental reconciliation path: upload changed or
// new entries, delete stale tracked objects, and persist the new
// manifest. The new manifest is written even when nothing changed so
// future reconciliations always diff against fresh state.
func (c *Client) update(
	ctx context.Context,
	req deploytypes.PackageRequest,
	previous *manifest.Manifest,
) (*deploytypes.Result, error) {
	start := time.Now()
	enc := c.parseEncoding(req.Encoding)
	m := manifest.New()
	up := c.uploader()

	written, skipped := 0, 0
	found, err := c.archive().Walk(ctx, req.SourceBucket, req.SourceKey,
		func(ctx context.Context, name string, content []byte) error {
			path := fingerprint.NormalizePath(name)
			hash := fingerprint.EntryHash(path, content, enc)
			m.Set(path, hash)

			if prevHash, ok := previous.Hash(path); ok && prevHash == hash {
				skipped++
				c.logger.Debug("entry unchanged, skipping", "path", path)
				return nil
			}
			if err := c.putEntry(ctx, up, req, path, content, enc); err != nil {
				return err
			}
			written++
			return nil
		})
	if err != nil {
		return nil, errors.NewError("update", err).WithBucket(req.SourceBucket).WithKey(req.SourceKey)
	}
	if !found {
		return nil, errors.NewError("update", errors.ErrSourceNotFound).
			WithBucket(req.SourceBucket).
			WithKey(req.SourceKey)
	}

	stale := previous.Diff(m)
	keys := make([]string, 0, len(stale))
	for _, path := range stale {
		keys = append(keys, uploader.JoinKey(req.DestinationKey, path))
	}
	deleted, err := c.deleter().DeleteBatch(ctx, req.DestinationBucket, keys)
	if err != nil {
		return nil, err
	}

	if err := c.manifests().Save(ctx, req.DestinationBucket, req.SourceKey, m); err != nil {
		return nil, err
	}

	c.logger.Info("deployment reconciled",
		"destinationBucket", req.DestinationBucket,
		"destinationKey", req.DestinationKey,
		"entriesWritten", written,
		"entriesSkipped", skipped,
		"objectsDeleted", deleted,
		"duration", time.Since(start))

	return &deploytypes.Result{
		PhysicalResourceID: physicalResourceID(req),
		URL:                c.destinationURL(req),
		EntriesWritten:     written,
		EntriesSkipped:     skipped,
		ObjectsDeleted:     deleted,
		Duration:           time.Since(start),
	}, nil
}

// putEntry encodes and uploads one package entry.
func (c *Client) putEntry(
	ctx context.Context,
	up *uploader.Uploader,
	req deploytypes.PackageRequest,
	path string,
	content []byte,
	enc encoding.Encoding,
) error {
	body, err := enc.Encode(content)
	if err != nil {
		return err
	}

	return up.Put(ctx, uploader.Object{
		Bucket:          req.DestinationBucket,
		Key:             uploader.JoinKey(req.DestinationKey, path),
		Body:            body,
		ContentType:     uploader.DetectContentType(path, content),
		ContentEncoding: enc.ContentEncoding(),
		ContentMD5:      fingerprint.ContentMD5(body),
	})
}

// parseEncoding maps the request encoding to an Encoding, warning on
// unrecognized values and falling back to identity.
func (c *Client) parseEncoding(value string) encoding.Encoding {
	enc, ok := encoding.Parse(value)
	if !ok {
		c.logger.Warn("unrecognized encoding, using NONE", "encoding", value)
	}
	return enc
}

// archive returns the package reader for this client.
func (c *Client) archive() *archive.Reader {
	return archive.New(c.s3Client, c.fs, c.logger)
}

// manifests returns the manifest store for this client.
func (c *Client) manifests() *manifest.Store {
	return manifest.NewStore(c.s3Client, c.manifestBucket, c.logger)
}

// uploader returns the entry uploader for this client.
func (c *Client) uploader() *uploader.Uploader {
	return uploader.New(c.s3Client)
}

// deleter returns the batch deleter for this client.
func (c *Client) deleter() *deleter.Deleter {
	return deleter.New(c.s3Client)
}

// validateRequest fails fast on missing or malformed request fields.
// The source bucket is only required when the package itself is needed;
// Delete works from the manifest alone.
func validateRequest(op string, req deploytypes.PackageRequest, needSource bool) error {
	if needSource && req.SourceBucket == "" {
		return missingParameter(op, "sourceBucketName")
	}
	if req.SourceKey == "" {
		return missingParameter(op, "sourceKey")
	}
	if req.DestinationBucket == "" {
		return missingParameter(op, "destinationBucketName")
	}
	if req.DestinationKey == "" {
		return missingParameter(op, "destinationKey")
	}

	if needSource {
		if err := validation.ValidateBucketName(req.SourceBucket); err != nil {
			return err
		}
	}
	if err := validation.ValidateBucketName(req.DestinationBucket); err != nil {
		return err
	}
	if err := validation.ValidateObjectKey(req.SourceKey); err != nil {
		return err
	}
	if err := validation.ValidateObjectKey(req.DestinationKey); err != nil {
		return err
	}
	return nil
}

// missingParameter builds the fail-fast error for an absent field.
func missingParameter(op, field string) error {
	return errors.NewError(op, errors.ErrMissingParameter).
		WithMessage(fmt.Sprintf("%s is required", field))
}

// physicalResourceID encodes the destination bucket and key prefix.
func physicalResourceID(req deploytypes.PackageRequest) string {
	return fmt.Sprintf("s3://%s/%s", req.DestinationBucket, req.DestinationKey)
}

// destinationURL returns the virtual-hosted-style HTTPS URL of the
// destination prefix, region-qualified when a region is configured.
func (c *Client) destinationURL(req deploytypes.PackageRequest) string {
	if c.region != "" && c.region != "us-east-1" {
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s",
			req.DestinationBucket, c.region, req.DestinationKey)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", req.DestinationBucket, req.DestinationKey)
}
