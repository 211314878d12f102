// Package disk is a client for the three Yandex Disk REST API calls used to
// publish uploaded files: get upload link, transfer bytes, get download link.
package disk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// API endpoints relative to the base URL.
const (
	UploadLinkPath   = "/v1/disk/resources/upload"
	DownloadLinkPath = "/v1/disk/resources/download"
)

// AuthScheme is the Authorization scheme expected by the API.
const AuthScheme = "OAuth"

// Operation names used in errors and logs.
const (
	OpUploadLink   = "get upload link"
	OpUpload       = "upload"
	OpDownloadLink = "get download link"
)

// ErrMissingHref is returned when a successful response carries no link.
var ErrMissingHref = errors.New("service did not return a link")

// APIError describes a non-success response or a transport failure.
// StatusCode is zero when no response was received.
type APIError struct {
	Operation  string
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Operation)
	if e.StatusCode != 0 {
		fmt.Fprintf(&sb, ": status %d", e.StatusCode)
	}
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Link is the body of both "get link" responses.
type Link struct {
	Href      string `json:"href"`
	Method    string `json:"method"`
	Templated bool   `json:"templated"`
}

// errorBody is the API's error document.
type errorBody struct {
	Message     string `json:"message"`
	Description string `json:"description"`
	Error       string `json:"error"`
}

func (b *errorBody) text() string {
	switch {
	case b.Message != "":
		return b.Message
	case b.Description != "":
		return b.Description
	default:
		return b.Error
	}
}

// Client talks to the disk API. It is safe for concurrent use.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient creates a Client for baseURL. Each call is bounded by timeout and
// calls are paced to rps requests per second (unlimited when rps <= 0).
func NewClient(baseURL string, timeout time.Duration, rps float64, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if rps > 0 {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetPreRequestHook(authorize)
	return &Client{
		http:    httpClient,
		limiter: limiter,
		timeout: timeout,
		logger:  logger,
	}
}

// UploadLink asks for a pre-authorised URL to PUT the file at path to.
func (c *Client) UploadLink(ctx context.Context, token, path string) (Link, error) {
	return c.link(ctx, OpUploadLink, UploadLinkPath, token, map[string]string{
		"path":      path,
		"overwrite": "true",
	})
}

// DownloadLink asks for a direct download URL of the file at path.
func (c *Client) DownloadLink(ctx context.Context, token, path string) (Link, error) {
	return c.link(ctx, OpDownloadLink, DownloadLinkPath, token, map[string]string{
		"path": path,
	})
}

// Upload transfers content to href. The href is pre-authorised, so no token is sent.
func (c *Client) Upload(ctx context.Context, href string, content []byte) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return &APIError{Operation: OpUpload, Err: err}
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/octet-stream").
		SetBody(content).
		Put(href)
	if err != nil {
		c.logger.Warn("Disk request failed", zap.String("operation", OpUpload), zap.Error(err))
		return &APIError{Operation: OpUpload, Err: err}
	}
	if !resp.IsSuccess() {
		c.logger.Warn("Disk request rejected",
			zap.String("operation", OpUpload),
			zap.Int("status", resp.StatusCode()))
		return &APIError{
			Operation:  OpUpload,
			StatusCode: resp.StatusCode(),
			Message:    strings.TrimSpace(string(resp.Body())),
		}
	}
	c.logger.Debug("File transferred", zap.Int("bytes", len(content)), zap.Int("status", resp.StatusCode()))
	return nil
}

type tokenKey struct{}

// withToken attaches the access token for the authorize hook.
func withToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, &oauth2.Token{AccessToken: token, TokenType: AuthScheme})
}

// authorize signs requests whose context carries a token. Pre-authorised
// upload hrefs are sent without one.
func authorize(_ *resty.Client, req *http.Request) error {
	if tok, ok := req.Context().Value(tokenKey{}).(*oauth2.Token); ok {
		tok.SetAuthHeader(req)
	}
	return nil
}

func (c *Client) link(ctx context.Context, op, endpoint, token string, params map[string]string) (Link, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return Link{}, &APIError{Operation: op, Err: err}
	}

	var link Link
	var apiErr errorBody
	resp, err := c.http.R().
		SetContext(withToken(ctx, token)).
		SetHeader("Accept", "application/json").
		ForceContentType("application/json").
		SetQueryParams(params).
		SetResult(&link).
		SetError(&apiErr).
		Get(endpoint)
	// A body that fails to decode still leaves the status to report on.
	if err != nil && (resp == nil || resp.StatusCode() == 0) {
		c.logger.Warn("Disk request failed", zap.String("operation", op), zap.Error(err))
		return Link{}, &APIError{Operation: op, Err: err}
	}
	if !resp.IsSuccess() {
		message := apiErr.text()
		if message == "" {
			message = strings.TrimSpace(string(resp.Body()))
		}
		if message == "" {
			message = http.StatusText(resp.StatusCode())
		}
		c.logger.Warn("Disk request rejected",
			zap.String("operation", op),
			zap.Int("status", resp.StatusCode()),
			zap.String("message", message))
		return Link{}, &APIError{Operation: op, StatusCode: resp.StatusCode(), Message: message}
	}
	if err != nil {
		return Link{}, fmt.Errorf("%s: %w: %v", op, ErrMissingHref, err)
	}
	if link.Href == "" {
		return Link{}, fmt.Errorf("%s: %w", op, ErrMissingHref)
	}
	return link, nil
}
