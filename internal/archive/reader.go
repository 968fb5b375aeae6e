// Package archive downloads a zip package from S3 to a transient local
// file and iterates its entries. The transient copy exists because zip
// central directories require random access; it is removed on every exit
// path.
package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketdeploy/internal/s3api"
)

// EntryFunc is invoked once per regular archive entry, sequentially.
// Entries are delivered in archive order and the callback must return
// before the next entry is read, so callbacks may perform network I/O.
// A non-nil error aborts the iteration and propagates.
type EntryFunc func(ctx context.Context, name string, content []byte) error

// Reader downloads and iterates zip packages from S3.
type Reader struct {
	s3Client s3api.S3API
	fs       fs.Filesystem
	logger   *slog.Logger
}

// New creates a Reader. A nil logger falls back to slog.Default().
func New(s3Client s3api.S3API, filesystem fs.Filesystem, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{
		s3Client: s3Client,
		fs:       filesystem,
		logger:   logger,
	}
}

// Walk downloads the object at (bucket, key) to a uniquely named
// transient file and invokes fn once per regular entry.
//
// The boolean reports whether the download succeeded: a failed download
// is logged at warn level and returns (false, nil) so callers can decide
// how to treat a missing source. Archive-open and callback failures
// return (true, err). The transient file is removed on all exit paths;
// cleanup errors are swallowed.
func (r *Reader) Walk(ctx context.Context, bucket, key string, fn EntryFunc) (bool, error) {
	tmpDir, err := r.fs.TempDir("", "bucketdeploy")
	if err != nil {
		return true, fmt.Errorf("create transient directory: %w", err)
	}
	tmpPath := path.Join(tmpDir, "package.zip")
	defer func() {
		// Cleanup errors leave at worst an orphaned temp file.
		_ = r.fs.Remove(tmpPath)
		_ = r.fs.Remove(tmpDir)
	}()

	if err := r.download(ctx, bucket, key, tmpPath); err != nil {
		r.logger.Warn("failed to download source package",
			"bucket", bucket,
			"key", key,
			"error", err)
		return false, nil
	}

	if err := r.walkFile(ctx, tmpPath, fn); err != nil {
		return true, err
	}
	return true, nil
}

// download streams the S3 object to the transient file.
func (r *Reader) download(ctx context.Context, bucket, key, dest string) error {
	output, err := r.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return err
	}
	defer output.Body.Close()

	file, err := r.fs.Create(dest)
	if err != nil {
		return fmt.Errorf("create transient file: %w", err)
	}

	if _, err := io.Copy(file, output.Body); err != nil {
		file.Close()
		return fmt.Errorf("write transient file: %w", err)
	}
	return file.Close()
}

// walkFile opens the transient file as a zip archive and drives the
// per-entry callback.
func (r *Reader) walkFile(ctx context.Context, tmpPath string, fn EntryFunc) error {
	file, err := r.fs.Open(tmpPath)
	if err != nil {
		return fmt.Errorf("open transient file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat transient file: %w", err)
	}

	zr, err := zip.NewReader(file, info.Size())
	if err != nil {
		return fmt.Errorf("open package archive: %w", err)
	}

	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		content, err := readEntry(entry)
		if err != nil {
			return err
		}
		if err := fn(ctx, entry.Name, content); err != nil {
			return err
		}
	}
	return nil
}

// readEntry reads one archive entry fully into memory.
func readEntry(entry *zip.File) ([]byte, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("open entry %s: %w", entry.Name, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read entry %s: %w", entry.Name, err)
	}
	return content, nil
}
