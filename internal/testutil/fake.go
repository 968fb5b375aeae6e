package testutil

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// StoredObject captures one object written to the fake S3, including the
// headers a reconciliation sets on it.
type StoredObject struct {
	Body            []byte
	ContentType     string
	ContentEncoding string
	ContentMD5      string
}

// FakeS3 is an in-memory object store implementing the s3api.S3API
// subset used by this module. It lets reconciliation tests assert on the
// full end state (objects present, headers, manifests) instead of on
// individual calls.
type FakeS3 struct {
	mu      sync.Mutex
	buckets map[string]map[string]StoredObject

	// PutCount and DeleteBatches record write traffic for assertions.
	PutCount      int
	DeleteBatches [][]string
}

// NewFakeS3 creates an empty fake object store.
func NewFakeS3() *FakeS3 {
	return &FakeS3{
		buckets: make(map[string]map[string]StoredObject),
	}
}

// Seed stores an object directly, bypassing call counters.
func (f *FakeS3) Seed(bucket, key string, body []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bucket(bucket)[key] = StoredObject{Body: body}
}

// Object returns a stored object and whether it exists.
func (f *FakeS3) Object(bucket, key string) (StoredObject, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.bucket(bucket)[key]
	return obj, ok
}

// Keys returns all keys currently stored in a bucket.
func (f *FakeS3) Keys(bucket string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for key := range f.bucket(bucket) {
		keys = append(keys, key)
	}
	return keys
}

// bucket returns the key map for a bucket, creating it if needed.
// Callers must hold f.mu.
func (f *FakeS3) bucket(name string) map[string]StoredObject {
	if f.buckets[name] == nil {
		f.buckets[name] = make(map[string]StoredObject)
	}
	return f.buckets[name]
}

// PutObject stores the object body and headers.
func (f *FakeS3) PutObject(
	ctx context.Context,
	params *s3.PutObjectInput,
	_ ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.PutCount++
	f.bucket(aws.ToString(params.Bucket))[aws.ToString(params.Key)] = StoredObject{
		Body:            body,
		ContentType:     aws.ToString(params.ContentType),
		ContentEncoding: aws.ToString(params.ContentEncoding),
		ContentMD5:      aws.ToString(params.ContentMD5),
	}
	return &s3.PutObjectOutput{}, nil
}

// GetObject returns the stored object or a NoSuchKey error.
func (f *FakeS3) GetObject(
	ctx context.Context,
	params *s3.GetObjectInput,
	_ ...func(*s3.Options),
) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	obj, ok := f.bucket(aws.ToString(params.Bucket))[aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(obj.Body)),
		ContentLength: aws.Int64(int64(len(obj.Body))),
	}, nil
}

// DeleteObject removes a single object; deleting a missing object succeeds.
func (f *FakeS3) DeleteObject(
	ctx context.Context,
	params *s3.DeleteObjectInput,
	_ ...func(*s3.Options),
) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.bucket(aws.ToString(params.Bucket)), aws.ToString(params.Key))
	return &s3.DeleteObjectOutput{}, nil
}

// DeleteObjects removes a batch of objects and records the batch.
func (f *FakeS3) DeleteObjects(
	ctx context.Context,
	params *s3.DeleteObjectsInput,
	_ ...func(*s3.Options),
) (*s3.DeleteObjectsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	objects := f.bucket(aws.ToString(params.Bucket))
	var batch []string
	for _, id := range params.Delete.Objects {
		key := aws.ToString(id.Key)
		batch = append(batch, key)
		delete(objects, key)
	}
	f.DeleteBatches = append(f.DeleteBatches, batch)
	return &s3.DeleteObjectsOutput{}, nil
}
