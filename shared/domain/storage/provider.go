package storage

import (
	"context"
	"fmt"
	"time"

	"firds/shared/config"
	"firds/shared/domain/base"
)

const storageProviderKey = "storage.remote"

// healthCheckKey is probed on initialization; a missing object is fine
const healthCheckKey = ".health-check"

func GetProvider() *base.Provider[ObjectStorage] {
	return base.GetProvider[ObjectStorage](storageProviderKey)
}

// Initialize creates the remote storage and verifies it answers
func Initialize(cfg *config.Config, factory StorageFactory) error {
	if factory == nil {
		return fmt.Errorf("storage factory is required")
	}

	checked := base.FactoryFunc[ObjectStorage](func(cfg *config.Config) (ObjectStorage, error) {
		s, err := factory.Create(cfg)
		if err != nil {
			return nil, err
		}
		if err := testConnection(s); err != nil {
			return nil, fmt.Errorf("failed to verify storage connection: %w", err)
		}
		return s, nil
	})

	return GetProvider().Initialize(cfg, checked)
}

func GetStorage() (ObjectStorage, error) {
	return GetProvider().Get()
}

func MustGetStorage() ObjectStorage {
	return GetProvider().MustGet()
}

func IsInitialized() bool {
	return GetProvider().IsInitialized()
}

func Reset() {
	GetProvider().Reset()
}

// testConnection probes the default bucket
func testConnection(s ObjectStorage) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := s.Exists(ctx, "", healthCheckKey)
	return err
}
