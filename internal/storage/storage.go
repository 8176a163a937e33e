// Package storage holds the blob backends behind the media gateway: a local
// directory served over HTTP, and an S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

var (
	ErrNotFound   = errors.New("object not found")
	ErrExists     = errors.New("object already exists")
	ErrInvalidKey = errors.New("invalid object key")
)

// BlobStore stores opaque objects under slash-separated keys.
type BlobStore interface {
	// Put writes body under key. It never overwrites: an existing key yields ErrExists.
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	// Delete removes key, or returns ErrNotFound.
	Delete(ctx context.Context, key string) error
	// URL returns the public address of key.
	URL(key string) string
}

// validKey reports whether key is a clean relative path without dot segments.
func validKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") || path.Clean(key) != key {
		return false
	}
	for _, part := range strings.Split(key, "/") {
		if part == "." || part == ".." {
			return false
		}
	}
	return true
}
