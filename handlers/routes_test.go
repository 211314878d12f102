package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"yacut/config"
	"yacut/handlers/mocks"
)

func setupRoutesTest() (*gin.Engine, *mocks.MockURLHandler, *config.Config) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	mockHandler := &mocks.MockURLHandler{}
	cfg := config.DefaultConfig()
	return router, mockHandler, cfg
}

func respondWith(status int) func(mock.Arguments) {
	return func(args mock.Arguments) {
		c := args.Get(0).(*gin.Context)
		c.Status(status)
	}
}

func TestRegisterRoutes(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		path    string
		handler string
		status  int
	}{
		{"CreateShortURL", http.MethodPost, "/api/id/", "CreateShortURL", http.StatusCreated},
		{"GetURLData", http.MethodGet, "/api/id/abc123/", "GetURLData", http.StatusOK},
		{"UploadFiles", http.MethodPost, "/api/files/", "UploadFiles", http.StatusCreated},
		{"HealthCheck", http.MethodGet, "/health", "HealthCheck", http.StatusOK},
		{"IndexPage", http.MethodGet, "/", "IndexPage", http.StatusOK},
		{"IndexSubmit", http.MethodPost, "/", "IndexPage", http.StatusOK},
		{"FilesPage", http.MethodGet, "/files", "FilesPage", http.StatusOK},
		{"FilesSubmit", http.MethodPost, "/files", "FilesPage", http.StatusOK},
		{"RedirectURL", http.MethodGet, "/abc123", "RedirectURL", http.StatusFound},
		{"UnknownAPIRoute", http.MethodGet, "/api/unknown/route", "NotFound", http.StatusNotFound},
		{"UnknownPage", http.MethodGet, "/a/b", "NotFound", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, mockHandler, cfg := setupRoutesTest()
			mockHandler.On(tt.handler, mock.Anything).Run(respondWith(tt.status)).Return().Once()

			RegisterRoutes(router, mockHandler, cfg, zap.NewNop())

			req := httptest.NewRequest(tt.method, tt.path, nil)
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			assert.Equal(t, tt.status, resp.Code)
			assert.NotEmpty(t, resp.Header().Get(requestIDHeader))
			mockHandler.AssertExpectations(t)
		})
	}
}

func TestRegisterRoutes_RecoversFromPanic(t *testing.T) {
	router, mockHandler, cfg := setupRoutesTest()
	mockHandler.On("GetURLData", mock.Anything).Run(func(mock.Arguments) {
		panic("boom")
	}).Return()
	mockHandler.On("RedirectURL", mock.Anything).Run(func(mock.Arguments) {
		panic("boom")
	}).Return()

	RegisterRoutes(router, mockHandler, cfg, zap.NewNop())

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/id/abc/", nil))
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.JSONEq(t, `{"message":"Internal server error."}`, resp.Body.String())

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/abc", nil))
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.True(t, strings.HasPrefix(resp.Header().Get("Content-Type"), "text/html"))
	assert.Contains(t, resp.Body.String(), "Internal server error.")
}
