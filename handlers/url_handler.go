// Package handlers provides HTTP request handlers for the URL shortener service.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"yacut/config"
	"yacut/services"
	"yacut/types"
	"yacut/urlgen"
)

const (
	msgMissingBody       = "Missing request body"
	msgURLRequired       = `"url" is a required field!`
	msgInvalidURL        = "Invalid URL provided"
	msgInvalidShortID    = "Invalid short link name"
	msgDuplicateShortID  = "The proposed short link already exists."
	msgIDNotFound        = "The specified id was not found"
	msgPageNotFound      = "Page not found."
	msgInternalError     = "Internal server error."
	msgStorageFull       = "Storage capacity reached"
	msgTimeout           = "Request timed out"
	msgGenerationFailed  = "Failed to generate a unique short link"
	msgDiskNotConfigured = "File storage is not configured"
	msgNoFiles           = "Select at least one file"
	msgUploadTooLarge    = "Upload is too large"
)

// URLHandlerInterface defines the methods that a URL handler should implement.
type URLHandlerInterface interface {
	CreateShortURL(c *gin.Context)
	GetURLData(c *gin.Context)
	UploadFiles(c *gin.Context)
	IndexPage(c *gin.Context)
	FilesPage(c *gin.Context)
	RedirectURL(c *gin.Context)
	HealthCheck(c *gin.Context)
	NotFound(c *gin.Context)
}

// URLHandler struct holds the dependencies for handling URL-related operations.
type URLHandler struct {
	service  services.URLService
	uploads  services.UploadService
	validate *validator.Validate
	config   *config.Config
	logger   *zap.Logger
}

// NewURLHandler creates and returns a new URLHandler instance.
//
// Parameters:
//   - ctx: A context.Context for cancellation during initialization.
//   - service: Short link creation and lookup.
//   - uploads: Cloud-drive upload orchestration.
//   - cfg: A pointer to the Config struct containing application settings.
//   - logger: Logger used for request-level events.
//
// Returns:
//   - The handler and an error if any dependency is missing.
func NewURLHandler(ctx context.Context, service services.URLService, uploads services.UploadService, cfg *config.Config, logger *zap.Logger) (URLHandlerInterface, error) {
	if service == nil {
		return nil, errors.New("service cannot be nil")
	}
	if uploads == nil {
		return nil, errors.New("upload service cannot be nil")
	}
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	handler := &URLHandler{
		service:  service,
		uploads:  uploads,
		validate: validator.New(),
		config:   cfg,
		logger:   logger,
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	return handler, nil
}

// classify maps an error to a status code and a user-facing message.
func (h *URLHandler) classify(c *gin.Context, err error) (int, string) {
	var uploadErr *services.UploadError

	switch {
	case errors.Is(err, urlgen.ErrInvalidFormat):
		return http.StatusBadRequest, msgInvalidShortID
	case errors.Is(err, urlgen.ErrDuplicate), errors.Is(err, services.ErrShortURLExists):
		return http.StatusBadRequest, msgDuplicateShortID
	case errors.Is(err, services.ErrShortURLNotFound):
		return http.StatusNotFound, msgIDNotFound
	case errors.Is(err, services.ErrStorageCapacityReached):
		return http.StatusInsufficientStorage, msgStorageFull
	case errors.Is(err, services.ErrMissingCredentials):
		h.log(c).Error("Upload requested without a disk token")
		return http.StatusServiceUnavailable, msgDiskNotConfigured
	case errors.Is(err, urlgen.ErrGenerationExhausted):
		h.log(c).Error("Short ID space exhausted", zap.Error(err))
		return http.StatusInternalServerError, msgGenerationFailed
	case errors.As(err, &uploadErr):
		return http.StatusBadGateway, uploadErr.Error()
	case errors.Is(err, context.DeadlineExceeded):
		h.log(c).Warn("Request timed out", zap.Error(err))
		return http.StatusRequestTimeout, msgTimeout
	default:
		h.log(c).Error("Unexpected error", zap.Error(err))
		return http.StatusInternalServerError, msgInternalError
	}
}

// handleError is a helper function to handle errors and send appropriate JSON responses
func (h *URLHandler) handleError(c *gin.Context, err error) {
	status, message := h.classify(c, err)
	c.JSON(status, types.MessageResponse{Message: message})
}

// log returns the handler logger annotated with the request ID.
func (h *URLHandler) log(c *gin.Context) *zap.Logger {
	if id := c.GetString(requestIDKey); id != "" {
		return h.logger.With(zap.String("request_id", id))
	}
	return h.logger
}

// shortLink builds the absolute link for short, using BASE_URL or the request host.
func (h *URLHandler) shortLink(c *gin.Context, short string) string {
	base := strings.TrimRight(h.config.BaseURL, "/")
	if base == "" {
		scheme := "http"
		if c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https") {
			scheme = "https"
		}
		base = scheme + "://" + c.Request.Host
	}
	return base + "/" + short
}

// CreateShortURL handles the creation of a new short link through the JSON API.
func (h *URLHandler) CreateShortURL(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.config.RequestTimeout)
	defer cancel()

	body, err := c.GetRawData()
	if err != nil {
		h.log(c).Warn("Error reading request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, types.MessageResponse{Message: msgMissingBody})
		return
	}

	var input *types.URLRequest
	if err := json.Unmarshal(body, &input); err != nil || input == nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			h.log(c).Info("Request field has the wrong type", zap.String("field", typeErr.Field), zap.Error(err))
			c.JSON(http.StatusBadRequest, types.MessageResponse{Message: fieldTypeMessage(typeErr.Field)})
			return
		}
		h.log(c).Info("Request body is not a JSON object", zap.Error(err))
		c.JSON(http.StatusBadRequest, types.MessageResponse{Message: msgMissingBody})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		h.log(c).Info("Invalid input", zap.String("url", input.URL), zap.Error(err))
		c.JSON(http.StatusBadRequest, types.MessageResponse{Message: urlValidationMessage(err)})
		return
	}

	urlMap, err := h.service.CreateShortURL(ctx, input.URL, input.CustomID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.log(c).Info("Short link created", zap.String("short", urlMap.Short), zap.String("url", urlMap.Original))
	c.JSON(http.StatusCreated, types.URLResponse{
		URL:       urlMap.Original,
		ShortLink: h.shortLink(c, urlMap.Short),
	})
}

// GetURLData retrieves the original URL for a given short ID.
func (h *URLHandler) GetURLData(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.config.RequestTimeout)
	defer cancel()

	short := c.Param("short_id")

	urlMap, err := h.service.GetURLData(ctx, short)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.OriginalURLResponse{URL: urlMap.Original})
}

// fieldTypeMessage answers a request field that is not a JSON string.
func fieldTypeMessage(field string) string {
	if field == "custom_id" {
		return msgInvalidShortID
	}
	return msgURLRequired
}

func urlValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == "required" {
				return msgURLRequired
			}
		}
	}
	return msgInvalidURL
}
