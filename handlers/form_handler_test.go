package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"yacut/services"
	"yacut/services/mocks"
	"yacut/types"
	"yacut/urlgen"
)

func formRequest(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestIndexPage(t *testing.T) {
	t.Run("Renders form", func(t *testing.T) {
		router, _, _ := newTestRouter(t, testConfig())

		resp := serve(router, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `name="original_link"`)
		assert.Contains(t, resp.Body.String(), `name="custom_id"`)
	})

	tests := []struct {
		name           string
		values         url.Values
		setupMock      func(*mocks.MockURLService)
		expectedStatus int
		expectedText   string
	}{
		{
			name:   "Created",
			values: url.Values{"original_link": {"https://python.org"}, "custom_id": {"py"}},
			setupMock: func(m *mocks.MockURLService) {
				m.On("CreateShortURL", mock.Anything, "https://python.org", "py").
					Return(types.URLMap{Original: "https://python.org", Short: "py"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedText:   "http://yacut.test/py",
		},
		{
			name:           "Missing link",
			values:         url.Values{"custom_id": {"py"}},
			expectedStatus: http.StatusBadRequest,
			expectedText:   msgRequiredField,
		},
		{
			name:           "Invalid link",
			values:         url.Values{"original_link": {"nope"}},
			expectedStatus: http.StatusBadRequest,
			expectedText:   msgEnterValidURL,
		},
		{
			name:   "Duplicate custom ID",
			values: url.Values{"original_link": {"https://python.org"}, "custom_id": {"files"}},
			setupMock: func(m *mocks.MockURLService) {
				m.On("CreateShortURL", mock.Anything, "https://python.org", "files").
					Return(types.URLMap{}, urlgen.ErrDuplicate)
			},
			expectedStatus: http.StatusBadRequest,
			expectedText:   "The proposed short link already exists.",
		},
		{
			name:   "Capacity reached",
			values: url.Values{"original_link": {"https://python.org"}},
			setupMock: func(m *mocks.MockURLService) {
				m.On("CreateShortURL", mock.Anything, "https://python.org", "").
					Return(types.URLMap{}, services.ErrStorageCapacityReached)
			},
			expectedStatus: http.StatusInsufficientStorage,
			expectedText:   msgStorageFull,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, urlService, _ := newTestRouter(t, testConfig())
			if tt.setupMock != nil {
				tt.setupMock(urlService)
			}

			resp := serve(router, formRequest(tt.values))

			assert.Equal(t, tt.expectedStatus, resp.Code)
			assert.Contains(t, resp.Header().Get("Content-Type"), "text/html")
			assert.Contains(t, resp.Body.String(), tt.expectedText)
			urlService.AssertExpectations(t)
		})
	}
}

func TestFilesPage(t *testing.T) {
	t.Run("Renders form", func(t *testing.T) {
		router, _, _ := newTestRouter(t, testConfig())

		resp := serve(router, httptest.NewRequest(http.MethodGet, "/files", nil))

		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `enctype="multipart/form-data"`)
	})

	t.Run("Uploaded", func(t *testing.T) {
		router, _, uploadService := newTestRouter(t, testConfig())
		uploadService.On("UploadFiles", mock.Anything, mock.Anything, "y0_token").Return([]types.UploadedFile{
			{Filename: "a.png", ShortID: "Abc123", DownloadURL: "https://downloader.example/a"},
		}, nil)

		resp := serve(router, multipartRequest(t, "/files", part{"a.png", "aaa"}))

		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), "a.png")
		assert.Contains(t, resp.Body.String(), "http://yacut.test/Abc123")
		assert.Contains(t, resp.Body.String(), msgFilesUploaded)
	})

	t.Run("No files", func(t *testing.T) {
		router, _, uploadService := newTestRouter(t, testConfig())

		resp := serve(router, multipartRequest(t, "/files"))

		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Contains(t, resp.Body.String(), msgNoFiles)
		uploadService.AssertNotCalled(t, "UploadFiles", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Missing credentials", func(t *testing.T) {
		cfg := testConfig()
		cfg.DiskToken = ""
		router, _, uploadService := newTestRouter(t, cfg)
		uploadService.On("UploadFiles", mock.Anything, mock.Anything, "").Return(nil, services.ErrMissingCredentials)

		resp := serve(router, multipartRequest(t, "/files", part{"a.png", "aaa"}))

		assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
		assert.Contains(t, resp.Body.String(), msgDiskNotConfigured)
	})
}
