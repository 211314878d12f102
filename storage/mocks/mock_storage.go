package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"yacut/types"
)

// MockStorage is a mock Storage interface
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Create(ctx context.Context, urlMap *types.URLMap) error {
	args := m.Called(ctx, urlMap)
	return args.Error(0)
}

func (m *MockStorage) CreateBatch(ctx context.Context, urlMaps []*types.URLMap) error {
	args := m.Called(ctx, urlMaps)
	return args.Error(0)
}

func (m *MockStorage) FindByShort(ctx context.Context, short string) (types.URLMap, error) {
	args := m.Called(ctx, short)
	return args.Get(0).(types.URLMap), args.Error(1)
}

func (m *MockStorage) ExistsByShort(ctx context.Context, short string) (bool, error) {
	args := m.Called(ctx, short)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) Close() error {
	args := m.Called()
	return args.Error(0)
}
