package deleter

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketdeploy/internal/testutil"
)

func TestDeleteBatch_EmptyIsNoOp(t *testing.T) {
	calls := 0
	mock := &testutil.MockS3Client{
		DeleteObjectsFunc: func(_ context.Context, _ *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
			calls++
			return &s3.DeleteObjectsOutput{}, nil
		},
	}

	deleted, err := New(mock).DeleteBatch(context.Background(), "www", nil)
	require.NoError(t, err)
	assert.Zero(t, deleted)
	assert.Zero(t, calls)
}

func TestDeleteBatch_PartitionsAtLimit(t *testing.T) {
	keys := make([]string, 2500)
	for i := range keys {
		keys[i] = fmt.Sprintf("site/file-%04d.txt", i)
	}

	var batchSizes []int
	mock := &testutil.MockS3Client{
		DeleteObjectsFunc: func(_ context.Context, params *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
			batchSizes = append(batchSizes, len(params.Delete.Objects))
			assert.Equal(t, "www", aws.ToString(params.Bucket))
			assert.True(t, aws.ToBool(params.Delete.Quiet))
			return &s3.DeleteObjectsOutput{}, nil
		},
	}

	deleted, err := New(mock).DeleteBatch(context.Background(), "www", keys)
	require.NoError(t, err)
	assert.Equal(t, 2500, deleted)
	assert.Equal(t, []int{1000, 1000, 500}, batchSizes)
}

func TestDeleteBatch_NormalizesSeparators(t *testing.T) {
	var got []string
	mock := &testutil.MockS3Client{
		DeleteObjectsFunc: func(_ context.Context, params *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
			for _, id := range params.Delete.Objects {
				got = append(got, aws.ToString(id.Key))
			}
			return &s3.DeleteObjectsOutput{}, nil
		},
	}

	_, err := New(mock).DeleteBatch(context.Background(), "www", []string{`site\a.txt`, "site/b.txt"})
	require.NoError(t, err)
	assert.Equal(t, []string{"site/a.txt", "site/b.txt"}, got)
}

func TestDeleteBatch_FailurePropagates(t *testing.T) {
	mock := &testutil.MockS3Client{
		DeleteObjectsFunc: func(_ context.Context, _ *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
			return nil, errors.New("access denied")
		},
	}

	_, err := New(mock).DeleteBatch(context.Background(), "www", []string{"site/a.txt"})
	assert.Error(t, err)
}

func TestDeleteBatch_HonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	mock := &testutil.MockS3Client{
		DeleteObjectsFunc: func(_ context.Context, _ *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
			calls++
			return &s3.DeleteObjectsOutput{}, nil
		},
	}

	_, err := New(mock).DeleteBatch(ctx, "www", []string{"site/a.txt"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}
