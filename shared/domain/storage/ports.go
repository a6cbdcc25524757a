package storage

import (
	"context"
	"io"

	"firds/shared/domain/base"
)

// ObjectStorage defines the interface for object storage operations
// This interface abstracts the underlying storage implementation,
// allowing for easy swapping between different providers (S3, local directory).
// An empty bucket selects the adapter's configured default.
type ObjectStorage interface {
	// Put stores an object in the specified bucket with the given key
	Put(ctx context.Context, bucket, key string, reader io.Reader, metadata ObjectMetadata) error

	// Get retrieves an object from the specified bucket by key
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, error)

	// Exists checks if an object exists in the specified bucket
	Exists(ctx context.Context, bucket, key string) (bool, error)
}

type StorageFactory interface {
	base.Factory[ObjectStorage]
}
