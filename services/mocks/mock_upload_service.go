package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"yacut/types"
)

// MockUploadService is a mock UploadService interface
type MockUploadService struct {
	mock.Mock
}

func (m *MockUploadService) UploadFiles(ctx context.Context, files []types.FileToUpload, token string) ([]types.UploadedFile, error) {
	args := m.Called(ctx, files, token)
	uploaded, _ := args.Get(0).([]types.UploadedFile)
	return uploaded, args.Error(1)
}
