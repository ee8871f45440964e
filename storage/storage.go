// Package storage uploads artifacts to object storage buckets.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrStorage wraps every failure reported by a storage backend. It is fatal for a run.
var ErrStorage = errors.New("storage failure")

// Storage is the object store used by the publisher.
type Storage interface {
	// Put uploads body under bucket/key, overwriting any existing object.
	Put(ctx context.Context, bucket, key string, body io.Reader, contentType string) error
	// SignedURL returns a time-limited retrieval URL for a private object.
	SignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}

// ImageKey is the key of an uploaded photo.
func ImageKey(filename string) string {
	return "images/" + filename
}

// PageKey is the key of a member page.
func PageKey(baseName string) string {
	return baseName + ".html"
}

// IndexKey is the key of the member listing page.
const IndexKey = "index.html"

const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
	ContentTypeHTML = "text/html"
)

// ImageContentType maps a lowercase extension to the uploaded content type.
func ImageContentType(ext string) string {
	if ext == "jpg" || ext == "jpeg" {
		return ContentTypeJPEG
	}
	return ContentTypePNG
}
