package base

import "firds/shared/config"

// Factory is a standardized factory interface for creating resources
type Factory[T any] interface {
	Create(cfg *config.Config) (T, error)
}

// FactoryFunc adapts a plain function to the Factory interface
type FactoryFunc[T any] func(cfg *config.Config) (T, error)

// Create calls f(cfg)
func (f FactoryFunc[T]) Create(cfg *config.Config) (T, error) {
	return f(cfg)
}
