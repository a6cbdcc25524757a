package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"firds/shared/domain/runtime"
)

// MockHandler is a mock implementation of runtime.Handler
type MockHandler struct {
	mock.Mock
}

func (m *MockHandler) Handle(ctx context.Context, trigger runtime.Trigger) (interface{}, error) {
	args := m.Called(ctx, trigger)
	return args.Get(0), args.Error(1)
}
