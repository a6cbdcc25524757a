package mocks

import (
	"firds/shared/config"
	"firds/shared/domain/observability"

	"github.com/stretchr/testify/mock"
)

// MockFactory is a mock implementation of ObservabilityFactory interface
type MockFactory struct {
	mock.Mock
}

// Create mocks the Create method
func (m *MockFactory) Create(cfg *config.Config) (*observability.ObservabilityComponents, error) {
	args := m.Called(cfg)
	if components, ok := args.Get(0).(*observability.ObservabilityComponents); ok {
		return components, args.Error(1)
	}
	return nil, args.Error(1)
}
