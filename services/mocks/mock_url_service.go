package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"yacut/types"
)

// MockURLService is a mock URLService interface
type MockURLService struct {
	mock.Mock
}

func (m *MockURLService) CreateShortURL(ctx context.Context, originalURL, customID string) (types.URLMap, error) {
	args := m.Called(ctx, originalURL, customID)
	return args.Get(0).(types.URLMap), args.Error(1)
}

func (m *MockURLService) GetURLData(ctx context.Context, short string) (types.URLMap, error) {
	args := m.Called(ctx, short)
	return args.Get(0).(types.URLMap), args.Error(1)
}
