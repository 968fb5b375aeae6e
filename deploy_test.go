package bucketdeploy

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketdeploy/deploytypes"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketdeploy/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketdeploy/internal/fingerprint"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketdeploy/internal/manifest"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketdeploy/internal/testutil"
)

const testManifestBucket = "deploy-manifests"

func newTestClient(t *testing.T, fake *testutil.FakeS3) *Client {
	t.Helper()
	return NewWithClient(fake, testManifestBucket,
		WithFilesystem(billy.NewInMemoryFS()),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func siteRequest() deploytypes.PackageRequest {
	return deploytypes.PackageRequest{
		SourceBucket:      "artifacts",
		SourceKey:         "releases/site.zip",
		DestinationBucket: "web",
		DestinationKey:    "site",
	}
}

func seedSite(t *testing.T, fake *testutil.FakeS3, entries ...testutil.ZipEntry) {
	t.Helper()
	fake.Seed("artifacts", "releases/site.zip", testutil.BuildZip(t, entries...))
}

// storedManifest fetches and decodes the persisted manifest for the
// standard test request.
func storedManifest(t *testing.T, fake *testutil.FakeS3) *manifest.Manifest {
	t.Helper()
	obj, ok := fake.Object(testManifestBucket, "web/releases/site.zip")
	require.True(t, ok, "manifest should be persisted")
	m, err := manifest.Decode(obj.Body)
	require.NoError(t, err)
	return m
}

func TestCreate_WritesEntriesAndManifest(t *testing.T) {
	fake := testutil.NewFakeS3()
	seedSite(t, fake,
		testutil.ZipEntry{Name: "index.html", Content: []byte("<html></html>")},
		testutil.ZipEntry{Name: "css/app.css", Content: []byte("body{}")},
		testutil.ZipEntry{Name: "data.bin", Content: []byte{0x00, 0x01, 0x02}},
	)
	client := newTestClient(t, fake)

	result, err := client.Create(context.Background(), siteRequest())
	require.NoError(t, err)

	assert.Equal(t, 3, result.EntriesWritten)
	assert.Equal(t, 0, result.EntriesSkipped)
	assert.Equal(t, "s3://web/site", result.PhysicalResourceID)
	assert.Equal(t, "https://web.s3.amazonaws.com/site", result.URL)

	obj, ok := fake.Object("web", "site/index.html")
	require.True(t, ok)
	assert.Equal(t, []byte("<html></html>"), obj.Body)
	assert.True(t, strings.HasPrefix(obj.ContentType, "text/html"))
	assert.Empty(t, obj.ContentEncoding)
	assert.Equal(t, fingerprint.ContentMD5(obj.Body), obj.ContentMD5)

	_, ok = fake.Object("web", "site/css/app.css")
	assert.True(t, ok)
	_, ok = fake.Object("web", "site/data.bin")
	assert.True(t, ok)

	m := storedManifest(t, fake)
	assert.Equal(t, 3, m.Len())
	hash, ok := m.Hash("index.html")
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(hash, "-none"))
}

func TestCreate_MissingParameterFailsFast(t *testing.T) {
	fake := testutil.NewFakeS3()
	client := newTestClient(t, fake)

	req := siteRequest()
	req.SourceBucket = ""
	_, err := client.Create(context.Background(), req)
	assert.ErrorIs(t, err, errors.ErrMissingParameter)
	assert.Zero(t, fake.PutCount)
}

func TestCreate_InvalidBucketNameFailsFast(t *testing.T) {
	fake := testutil.NewFakeS3()
	client := newTestClient(t, fake)

	req := siteRequest()
	req.DestinationBucket = "Invalid_Bucket"
	_, err := client.Create(context.Background(), req)
	assert.ErrorIs(t, err, errors.ErrInvalidBucketName)
	assert.Zero(t, fake.PutCount)
}

func TestCreate_SourceNotFound(t *testing.T) {
	fake := testutil.NewFakeS3()
	client := newTestClient(t, fake)

	_, err := client.Create(context.Background(), siteRequest())
	assert.ErrorIs(t, err, errors.ErrSourceNotFound)
	assert.True(t, errors.IsSourceNotFound(err))
}

func TestCreate_GzipEncoding(t *testing.T) {
	original := []byte("<!DOCTYPE html><html><body>" +
		strings.Repeat("<p>compress me</p>", 40) + "</body></html>")
	fake := testutil.NewFakeS3()
	seedSite(t, fake, testutil.ZipEntry{Name: "page.html", Content: original})
	client := newTestClient(t, fake)

	req := siteRequest()
	req.Encoding = "GZIP"
	_, err := client.Create(context.Background(), req)
	require.NoError(t, err)

	obj, ok := fake.Object("web", "site/page.html")
	require.True(t, ok)
	assert.Equal(t, "gzip", obj.ContentEncoding)
	assert.True(t, strings.HasPrefix(obj.ContentType, "text/html"))
	assert.Equal(t, fingerprint.ContentMD5(obj.Body), obj.ContentMD5)

	gr, err := gzip.NewReader(bytes.NewReader(obj.Body))
	require.NoError(t, err)
	decoded, err := io.ReadAll(gr)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)

	m := storedManifest(t, fake)
	hash, ok := m.Hash("page.html")
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(hash, "-gzip"))
}

func TestUpdate_UnchangedPackageSkipsAllUploads(t *testing.T) {
	fake := testutil.NewFakeS3()
	seedSite(t, fake,
		testutil.ZipEntry{Name: "a.txt", Content: []byte("alpha")},
		testutil.ZipEntry{Name: "b.txt", Content: []byte("beta")},
	)
	client := newTestClient(t, fake)

	_, err := client.Create(context.Background(), siteRequest())
	require.NoError(t, err)
	putsAfterCreate := fake.PutCount

	result, err := client.Update(context.Background(), siteRequest(), siteRequest())
	require.NoError(t, err)

	assert.Equal(t, 0, result.EntriesWritten)
	assert.Equal(t, 2, result.EntriesSkipped)
	assert.Equal(t, 0, result.ObjectsDeleted)

	// Only the refreshed manifest was written.
	assert.Equal(t, putsAfterCreate+1, fake.PutCount)

	_, ok := fake.Object("web", "site/a.txt")
	assert.True(t, ok)
	_, ok = fake.Object("web", "site/b.txt")
	assert.True(t, ok)
	assert.Equal(t, 2, storedManifest(t, fake).Len())
}

func TestUpdate_UploadsChangedAndDeletesStale(t *testing.T) {
	fake := testutil.NewFakeS3()
	seedSite(t, fake,
		testutil.ZipEntry{Name: "a.txt", Content: []byte("alpha")},
		testutil.ZipEntry{Name: "b.txt", Content: []byte("beta")},
	)
	client := newTestClient(t, fake)

	_, err := client.Create(context.Background(), siteRequest())
	require.NoError(t, err)

	// New package keeps a.txt unchanged, drops b.txt, adds c.txt.
	seedSite(t, fake,
		testutil.ZipEntry{Name: "a.txt", Content: []byte("alpha")},
		testutil.ZipEntry{Name: "c.txt", Content: []byte("gamma")},
	)

	result, err := client.Update(context.Background(), siteRequest(), siteRequest())
	require.NoError(t, err)

	assert.Equal(t, 1, result.EntriesWritten)
	assert.Equal(t, 1, result.EntriesSkipped)
	assert.Equal(t, 1, result.ObjectsDeleted)

	_, ok := fake.Object("web", "site/a.txt")
	assert.True(t, ok)
	_, ok = fake.Object("web", "site/c.txt")
	assert.True(t, ok)
	_, ok = fake.Object("web", "site/b.txt")
	assert.False(t, ok, "stale object should be deleted")

	m := storedManifest(t, fake)
	assert.Equal(t, []string{"a.txt", "c.txt"}, m.Paths())
}

func TestUpdate_ChangedContentIsReuploaded(t *testing.T) {
	fake := testutil.NewFakeS3()
	seedSite(t, fake, testutil.ZipEntry{Name: "a.txt", Content: []byte("v1")})
	client := newTestClient(t, fake)

	_, err := client.Create(context.Background(), siteRequest())
	require.NoError(t, err)

	seedSite(t, fake, testutil.ZipEntry{Name: "a.txt", Content: []byte("v2")})

	result, err := client.Update(context.Background(), siteRequest(), siteRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, result.EntriesWritten)
	assert.Equal(t, 0, result.EntriesSkipped)

	obj, ok := fake.Object("web", "site/a.txt")
	require.True(t, ok)
	assert.Equal(t, []byte("v2"), obj.Body)
}

func TestUpdate_EncodingChangeInvalidatesEntries(t *testing.T) {
	fake := testutil.NewFakeS3()
	seedSite(t, fake, testutil.ZipEntry{Name: "a.txt", Content: []byte("alpha")})
	client := newTestClient(t, fake)

	_, err := client.Create(context.Background(), siteRequest())
	require.NoError(t, err)

	req := siteRequest()
	req.Encoding = "GZIP"
	result, err := client.Update(context.Background(), req, siteRequest())
	require.NoError(t, err)

	// Identical bytes, but the fingerprint carries the encoding, so the
	// entry is rewritten with the new transform.
	assert.Equal(t, 1, result.EntriesWritten)
	assert.Equal(t, 0, result.EntriesSkipped)

	obj, ok := fake.Object("web", "site/a.txt")
	require.True(t, ok)
	assert.Equal(t, "gzip", obj.ContentEncoding)
}

func TestUpdate_DestinationChangeReplacesDeployment(t *testing.T) {
	fake := testutil.NewFakeS3()
	seedSite(t, fake, testutil.ZipEntry{Name: "a.txt", Content: []byte("alpha")})
	client := newTestClient(t, fake)

	previous := siteRequest()
	_, err := client.Create(context.Background(), previous)
	require.NoError(t, err)

	current := siteRequest()
	current.DestinationKey = "site-v2"
	result, err := client.Update(context.Background(), current, previous)
	require.NoError(t, err)
	assert.Equal(t, 1, result.EntriesWritten)
	assert.Equal(t, "s3://web/site-v2", result.PhysicalResourceID)

	_, ok := fake.Object("web", "site/a.txt")
	assert.False(t, ok, "old deployment should be removed")
	_, ok = fake.Object("web", "site-v2/a.txt")
	assert.True(t, ok)
}

func TestUpdate_MissingManifestFallsBackToFullDeploy(t *testing.T) {
	fake := testutil.NewFakeS3()
	seedSite(t, fake,
		testutil.ZipEntry{Name: "a.txt", Content: []byte("alpha")},
		testutil.ZipEntry{Name: "b.txt", Content: []byte("beta")},
	)
	client := newTestClient(t, fake)

	result, err := client.Update(context.Background(), siteRequest(), siteRequest())
	require.NoError(t, err)

	assert.Equal(t, 2, result.EntriesWritten)
	assert.Equal(t, 0, result.EntriesSkipped)
	assert.Equal(t, 2, storedManifest(t, fake).Len())
}

func TestDelete_RemovesTrackedObjects(t *testing.T) {
	fake := testutil.NewFakeS3()
	seedSite(t, fake,
		testutil.ZipEntry{Name: "a.txt", Content: []byte("alpha")},
		testutil.ZipEntry{Name: "b.txt", Content: []byte("beta")},
	)
	client := newTestClient(t, fake)

	_, err := client.Create(context.Background(), siteRequest())
	require.NoError(t, err)

	result, err := client.Delete(context.Background(), siteRequest())
	require.NoError(t, err)
	assert.Equal(t, 2, result.ObjectsDeleted)

	assert.Empty(t, fake.Keys("web"))
	_, ok := fake.Object(testManifestBucket, "web/releases/site.zip")
	assert.False(t, ok, "manifest should be consumed")
}

func TestDelete_NoManifestIsIdempotent(t *testing.T) {
	fake := testutil.NewFakeS3()
	client := newTestClient(t, fake)

	result, err := client.Delete(context.Background(), siteRequest())
	require.NoError(t, err)
	assert.Equal(t, 0, result.ObjectsDeleted)
	assert.Empty(t, fake.DeleteBatches)
}

func TestDelete_WithoutSourceBucket(t *testing.T) {
	fake := testutil.NewFakeS3()
	seedSite(t, fake, testutil.ZipEntry{Name: "a.txt", Content: []byte("alpha")})
	client := newTestClient(t, fake)

	_, err := client.Create(context.Background(), siteRequest())
	require.NoError(t, err)

	req := siteRequest()
	req.SourceBucket = ""
	result, err := client.Delete(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ObjectsDeleted)
}

func TestDestinationURL_RegionQualified(t *testing.T) {
	fake := testutil.NewFakeS3()
	client := NewWithClient(fake, testManifestBucket,
		WithRegion("eu-west-1"),
		WithFilesystem(billy.NewInMemoryFS()),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	assert.Equal(t,
		"https://web.s3.eu-west-1.amazonaws.com/site",
		client.destinationURL(siteRequest()))
}
