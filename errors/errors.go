// Package errors provides error types and handling for bucket deployment
// operations.
package errors

import (
	"errors"
	"fmt"
)

// Error represents a deployment operation error with context about the
// operation that failed. It wraps the underlying AWS SDK error with
// additional context for better debugging.
type Error struct {
	// Op is the operation that failed (e.g., "create", "update", "delete")
	Op string

	// Bucket is the S3 bucket name (if applicable)
	Bucket string

	// Key is the S3 object key (if applicable)
	Key string

	// Err is the underlying error from the AWS SDK or other source
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Bucket != "" && e.Key != "" {
		return fmt.Sprintf("bucketdeploy.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("bucketdeploy.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	if e.Key != "" {
		return fmt.Sprintf("bucketdeploy.%s object %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("bucketdeploy.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewObjectError creates a new Error with bucket and key context.
func NewObjectError(op, bucket, key string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Key:    key,
		Err:    err,
	}
}

// Sentinel errors for deployment operation failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrMissingParameter indicates that a required request field is absent.
	// Raised before any I/O is attempted.
	ErrMissingParameter = errors.New("bucketdeploy: missing parameter")

	// ErrSourceNotFound indicates that the source package could not be
	// downloaded from S3.
	ErrSourceNotFound = errors.New("bucketdeploy: source package not found")

	// ErrManifestNotFound indicates that no manifest exists for the
	// requested (destination bucket, source key) pair.
	ErrManifestNotFound = errors.New("bucketdeploy: manifest not found")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("bucketdeploy: invalid input")

	// ErrInvalidBucketName indicates that a bucket name is invalid
	ErrInvalidBucketName = errors.New("bucketdeploy: invalid bucket name")

	// ErrInvalidObjectKey indicates that an object key is invalid
	ErrInvalidObjectKey = errors.New("bucketdeploy: invalid object key")
)

// IsMissingParameter checks if an error indicates a missing request field.
func IsMissingParameter(err error) bool {
	return errors.Is(err, ErrMissingParameter)
}

// IsSourceNotFound checks if an error indicates the source package was
// not found.
func IsSourceNotFound(err error) bool {
	return errors.Is(err, ErrSourceNotFound)
}

// IsManifestNotFound checks if an error indicates that no manifest was
// found for the pair.
func IsManifestNotFound(err error) bool {
	return errors.Is(err, ErrManifestNotFound)
}
