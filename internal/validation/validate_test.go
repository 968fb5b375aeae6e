package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketdeploy/errors"
)

func TestValidateBucketName(t *testing.T) {
	tests := []struct {
		name    string
		bucket  string
		wantErr bool
	}{
		{name: "valid simple name", bucket: "my-bucket"},
		{name: "valid with dots", bucket: "my.bucket.name"},
		{name: "valid minimum length", bucket: "abc"},
		{name: "valid maximum length", bucket: strings.Repeat("a", 63)},
		{name: "valid with numbers", bucket: "bucket123"},
		{name: "empty", bucket: "", wantErr: true},
		{name: "too short", bucket: "ab", wantErr: true},
		{name: "too long", bucket: strings.Repeat("a", 64), wantErr: true},
		{name: "uppercase", bucket: "My-Bucket", wantErr: true},
		{name: "underscore", bucket: "my_bucket", wantErr: true},
		{name: "leading hyphen", bucket: "-bucket", wantErr: true},
		{name: "trailing hyphen", bucket: "bucket-", wantErr: true},
		{name: "leading dot", bucket: ".bucket", wantErr: true},
		{name: "trailing dot", bucket: "bucket.", wantErr: true},
		{name: "adjacent dots", bucket: "my..bucket", wantErr: true},
		{name: "adjacent hyphens", bucket: "my--bucket", wantErr: true},
		{name: "ip address", bucket: "192.168.1.1", wantErr: true},
		{name: "dotted but not ip", bucket: "192.168.1.hosted", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBucketName(tt.bucket)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errors.ErrInvalidBucketName)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateObjectKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{name: "valid simple key", key: "file.txt"},
		{name: "valid nested key", key: "path/to/file.txt"},
		{name: "valid dotted segment", key: "release/v1.2.3/app.zip"},
		{name: "valid maximum length", key: strings.Repeat("a", 1024)},
		{name: "empty", key: "", wantErr: true},
		{name: "too long", key: strings.Repeat("a", 1025), wantErr: true},
		{name: "path traversal", key: "../etc/passwd", wantErr: true},
		{name: "embedded traversal", key: "path/../secret", wantErr: true},
		{name: "backslash traversal", key: "path\\..\\secret", wantErr: true},
		{name: "control character", key: "file\x00.txt", wantErr: true},
		{name: "newline", key: "file\n.txt", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateObjectKey(tt.key)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errors.ErrInvalidObjectKey)
				return
			}
			assert.NoError(t, err)
		})
	}
}
