package storage

import (
	"errors"
	"time"
)

// Common storage errors
var (
	// ErrObjectNotFound is returned when an object is not found in storage
	ErrObjectNotFound = errors.New("object not found")

	// ErrInvalidKey is returned for keys that are empty or escape the bucket
	ErrInvalidKey = errors.New("invalid object key")
)

// ObjectMetadata represents metadata associated with stored objects
type ObjectMetadata struct {
	ContentType   string            `json:"content_type,omitempty"`
	ContentLength int64             `json:"content_length,omitempty"`
	LastModified  time.Time         `json:"last_modified,omitempty"`
	UserMetadata  map[string]string `json:"user_metadata,omitempty"`
}
