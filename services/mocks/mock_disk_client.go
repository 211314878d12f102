package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"yacut/disk"
)

// MockDiskClient is a mock DiskClient interface
type MockDiskClient struct {
	mock.Mock
}

func (m *MockDiskClient) UploadLink(ctx context.Context, token, path string) (disk.Link, error) {
	args := m.Called(ctx, token, path)
	return args.Get(0).(disk.Link), args.Error(1)
}

func (m *MockDiskClient) Upload(ctx context.Context, href string, content []byte) error {
	args := m.Called(ctx, href, content)
	return args.Error(0)
}

func (m *MockDiskClient) DownloadLink(ctx context.Context, token, path string) (disk.Link, error) {
	args := m.Called(ctx, token, path)
	return args.Get(0).(disk.Link), args.Error(1)
}
