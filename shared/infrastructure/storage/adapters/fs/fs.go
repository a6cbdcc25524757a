package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"firds/shared/domain/observability"
	"firds/shared/domain/storage"
)

// Storage implements ObjectStorage using the local filesystem. Buckets
// are directories under basePath and the empty bucket is basePath itself.
// Metadata, when given, is saved next to the object.
type Storage struct {
	basePath string
	logger   observability.Logger
	metrics  observability.Metrics
}

// NewStorage creates a new filesystem-based object storage
func NewStorage(basePath string, logger observability.Logger, metrics observability.Metrics) (*Storage, error) {
	// Create base directory if it doesn't exist
	if err := os.MkdirAll(basePath, 0755); err != nil {
		logger.Error("Failed to create base path", "path", basePath, "error", err)
		return nil, fmt.Errorf("failed to create base path: %w", err)
	}

	logger.Info("Filesystem storage initialized", "base_path", basePath)

	return &Storage{
		basePath: basePath,
		logger:   logger.WithFields(map[string]interface{}{"storage": "filesystem"}),
		metrics:  metrics.WithTags(map[string]string{"storage": "filesystem"}),
	}, nil
}

// Put stores an object
func (s *Storage) Put(ctx context.Context, bucket, key string, reader io.Reader, metadata storage.ObjectMetadata) error {
	startTime := time.Now()

	objectPath, err := s.getObjectPath(bucket, key)
	if err != nil {
		s.metrics.IncrementCounter("storage.put.errors", map[string]string{"error": "key"})
		return err
	}

	// Create bucket directory if needed
	if err := os.MkdirAll(filepath.Dir(objectPath), 0755); err != nil {
		s.logger.Error("Failed to create bucket directory", "bucket", bucket, "error", err)
		s.metrics.IncrementCounter("storage.put.errors", map[string]string{"error": "mkdir"})
		return fmt.Errorf("failed to create bucket directory: %w", err)
	}

	// Write object data
	file, err := os.Create(objectPath)
	if err != nil {
		s.logger.Error("Failed to create file", "path", objectPath, "error", err)
		s.metrics.IncrementCounter("storage.put.errors", map[string]string{"error": "create"})
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	bytesWritten, err := io.Copy(file, reader)
	if err != nil {
		s.logger.Error("Failed to write data", "bucket", bucket, "key", key, "error", err)
		s.metrics.IncrementCounter("storage.put.errors", map[string]string{"error": "write"})
		return fmt.Errorf("failed to write data: %w", err)
	}

	// Plain artifacts get no sidecar
	if metadata.ContentType != "" || len(metadata.UserMetadata) > 0 {
		metadata.ContentLength = bytesWritten
		metadata.LastModified = time.Now().UTC()
		if err := s.saveMetadata(objectPath, metadata); err != nil {
			s.logger.Error("Failed to save metadata", "bucket", bucket, "key", key, "error", err)
			s.metrics.IncrementCounter("storage.put.errors", map[string]string{"error": "metadata"})
			return fmt.Errorf("failed to save metadata: %w", err)
		}
	}

	duration := time.Since(startTime)
	s.logger.Info("Object stored successfully",
		"bucket", bucket,
		"key", key,
		"bytes", bytesWritten,
		"duration_ms", duration.Milliseconds())

	s.metrics.IncrementCounter("storage.put.success", nil)
	s.metrics.RecordHistogram("storage.put.bytes", float64(bytesWritten), nil)

	return nil
}

// Get retrieves an object
func (s *Storage) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	objectPath, err := s.getObjectPath(bucket, key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(objectPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s/%s", storage.ErrObjectNotFound, bucket, key)
		}
		s.logger.Error("Failed to open file", "path", objectPath, "error", err)
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Exists checks if an object exists
func (s *Storage) Exists(ctx context.Context, bucket, key string) (bool, error) {
	objectPath, err := s.getObjectPath(bucket, key)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(objectPath)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}

	s.logger.Error("Failed to check object existence", "bucket", bucket, "key", key, "error", err)
	return false, err
}

// Metadata returns the metadata saved with an object
func (s *Storage) Metadata(bucket, key string) (storage.ObjectMetadata, error) {
	objectPath, err := s.getObjectPath(bucket, key)
	if err != nil {
		return storage.ObjectMetadata{}, err
	}

	data, err := os.ReadFile(objectPath + metadataSuffix)
	if err != nil {
		if os.IsNotExist(err) {
			return storage.ObjectMetadata{}, nil
		}
		return storage.ObjectMetadata{}, err
	}

	var metadata storage.ObjectMetadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return storage.ObjectMetadata{}, err
	}
	return metadata, nil
}

const metadataSuffix = ".metadata.json"

// getObjectPath resolves bucket/key under basePath and rejects keys
// that would leave the bucket directory
func (s *Storage) getObjectPath(bucket, key string) (string, error) {
	key = strings.TrimPrefix(filepath.ToSlash(key), "/")
	if key == "" {
		return "", fmt.Errorf("%w: empty key", storage.ErrInvalidKey)
	}

	bucketPath := filepath.Join(s.basePath, bucket)
	objectPath := filepath.Join(bucketPath, filepath.FromSlash(key))

	rel, err := filepath.Rel(bucketPath, objectPath)
	if err != nil || rel == "." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || rel == ".." {
		return "", fmt.Errorf("%w: %s", storage.ErrInvalidKey, key)
	}
	return objectPath, nil
}

func (s *Storage) saveMetadata(objectPath string, metadata storage.ObjectMetadata) error {
	data, err := json.Marshal(metadata)
	if err != nil {
		return err
	}
	return os.WriteFile(objectPath+metadataSuffix, data, 0644)
}
