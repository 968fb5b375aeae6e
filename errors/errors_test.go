package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	base := stderrors.New("boom")

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "op only",
			err:  NewError("create", base),
			want: "bucketdeploy.create: boom",
		},
		{
			name: "with bucket",
			err:  NewError("create", base).WithBucket("web"),
			want: "bucketdeploy.create bucket web: boom",
		},
		{
			name: "with key",
			err:  NewError("create", base).WithKey("site/index.html"),
			want: "bucketdeploy.create object site/index.html: boom",
		},
		{
			name: "with bucket and key",
			err:  NewObjectError("update", "web", "site/index.html", base),
			want: "bucketdeploy.update web/site/index.html: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	err := NewError("delete", ErrManifestNotFound).
		WithBucket("web").
		WithMessage("consume failed")

	assert.ErrorIs(t, err, ErrManifestNotFound)
	assert.Contains(t, err.Error(), "consume failed")
}

func TestSentinelHelpers(t *testing.T) {
	assert.True(t, IsMissingParameter(NewError("create", ErrMissingParameter)))
	assert.True(t, IsSourceNotFound(NewError("create", ErrSourceNotFound)))
	assert.True(t, IsManifestNotFound(NewError("delete", ErrManifestNotFound)))

	other := NewError("create", stderrors.New("boom"))
	assert.False(t, IsMissingParameter(other))
	assert.False(t, IsSourceNotFound(other))
	assert.False(t, IsManifestNotFound(other))
}
