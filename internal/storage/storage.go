// Package storage provides read access to datasets kept in object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Common errors for storage operations.
var (
	ErrObjectNotFound = errors.New("object not found")
	ErrDownloadFailed = errors.New("download failed")
)

// ObjectStorage abstracts the object store a dataset is fetched from.
// Implementations include S3 and the local filesystem.
type ObjectStorage interface {
	// Download downloads a file from object storage.
	// objectPath is the source path in object storage.
	// localPath is the destination path on the local filesystem.
	Download(ctx context.Context, objectPath, localPath string) error

	// Exists checks if an object exists in storage.
	Exists(ctx context.Context, objectPath string) (bool, error)

	// ListObjects returns all object paths under the given prefix.
	ListObjects(ctx context.Context, prefix string) ([]string, error)
}

// URI is a parsed "s3://bucket/key" location.
type URI struct {
	Bucket string
	Key    string
}

// IsPrefix reports whether the URI names a prefix rather than one object.
func (u URI) IsPrefix() bool {
	return u.Key == "" || strings.HasSuffix(u.Key, "/")
}

// String returns the URI in s3:// form.
func (u URI) String() string {
	return "s3://" + u.Bucket + "/" + u.Key
}

// IsS3URI reports whether source uses the s3:// scheme.
func IsS3URI(source string) bool {
	return strings.HasPrefix(source, "s3://")
}

// ParseS3URI splits an s3:// location into bucket and key.
func ParseS3URI(source string) (URI, error) {
	if !IsS3URI(source) {
		return URI{}, fmt.Errorf("storage: not an s3 uri: %q", source)
	}
	rest := strings.TrimPrefix(source, "s3://")
	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return URI{}, fmt.Errorf("storage: missing bucket in %q", source)
	}
	return URI{Bucket: bucket, Key: key}, nil
}
