package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yacut/types"
)

// uploadField is the multipart field carrying the files.
const uploadField = "files"

var errUploadTooLarge = errors.New("upload exceeds the size limit")

// UploadFiles publishes the multipart files on the cloud drive and returns a
// short link per file.
func (h *URLHandler) UploadFiles(c *gin.Context) {
	files, err := h.readUploads(c)
	if err != nil {
		h.uploadReadError(c, err)
		return
	}
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, types.MessageResponse{Message: msgNoFiles})
		return
	}

	// Each drive call carries its own timeout, so the batch is bound only by the client.
	uploaded, err := h.uploads.UploadFiles(c.Request.Context(), files, h.config.DiskToken)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, h.uploadedResponse(c, uploaded))
}

func (h *URLHandler) uploadReadError(c *gin.Context, err error) {
	if errors.Is(err, errUploadTooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, types.MessageResponse{Message: msgUploadTooLarge})
		return
	}
	h.log(c).Warn("Error reading upload", zap.Error(err))
	c.JSON(http.StatusBadRequest, types.MessageResponse{Message: msgNoFiles})
}

func (h *URLHandler) uploadedResponse(c *gin.Context, uploaded []types.UploadedFile) []types.UploadedFileResponse {
	response := make([]types.UploadedFileResponse, 0, len(uploaded))
	for _, u := range uploaded {
		response = append(response, types.UploadedFileResponse{
			Filename:  u.Filename,
			ShortLink: h.shortLink(c, u.ShortID),
		})
	}
	return response
}

// readUploads reads every file of the multipart field into memory. A request
// that is not multipart yields no files.
func (h *URLHandler) readUploads(c *gin.Context) ([]types.FileToUpload, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.config.MaxUploadBytes())

	form, err := c.MultipartForm()
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
			return nil, nil
		case errors.As(err, &maxErr), errors.Is(err, multipart.ErrMessageTooLarge):
			return nil, errUploadTooLarge
		default:
			return nil, fmt.Errorf("parse multipart form: %w", err)
		}
	}

	headers := form.File[uploadField]
	files := make([]types.FileToUpload, 0, len(headers))
	for _, fh := range headers {
		// browsers submit an empty part when nothing was chosen
		if fh.Filename == "" && fh.Size == 0 {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open %q: %w", fh.Filename, err)
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", fh.Filename, err)
		}
		files = append(files, types.FileToUpload{Filename: fh.Filename, Content: content})
	}
	return files, nil
}
