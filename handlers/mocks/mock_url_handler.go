package mocks

import (
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

type MockURLHandler struct {
	mock.Mock
}

func (m *MockURLHandler) CreateShortURL(c *gin.Context) {
	m.Called(c)
}

func (m *MockURLHandler) GetURLData(c *gin.Context) {
	m.Called(c)
}

func (m *MockURLHandler) UploadFiles(c *gin.Context) {
	m.Called(c)
}

func (m *MockURLHandler) IndexPage(c *gin.Context) {
	m.Called(c)
}

func (m *MockURLHandler) FilesPage(c *gin.Context) {
	m.Called(c)
}

func (m *MockURLHandler) RedirectURL(c *gin.Context) {
	m.Called(c)
}

func (m *MockURLHandler) HealthCheck(c *gin.Context) {
	m.Called(c)
}

func (m *MockURLHandler) NotFound(c *gin.Context) {
	m.Called(c)
}
