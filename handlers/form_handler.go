package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"yacut/types"
)

const (
	msgRequiredField = "Required field"
	msgEnterValidURL = "Enter a valid URL"
	msgLinkCreated   = "Short link created successfully!"
	msgFilesUploaded = "Files uploaded to the cloud drive."
)

// IndexPage renders the short link form and handles its submission.
func (h *URLHandler) IndexPage(c *gin.Context) {
	page := pageData{ActivePage: "index"}
	if c.Request.Method != http.MethodPost {
		c.HTML(http.StatusOK, "index.html", page)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.config.RequestTimeout)
	defer cancel()

	var form types.URLForm
	if err := c.ShouldBind(&form); err != nil {
		h.log(c).Info("Error decoding form", zap.Error(err))
		page.danger(msgRequiredField)
		c.HTML(http.StatusBadRequest, "index.html", page)
		return
	}
	page.OriginalLink, page.CustomID = form.OriginalLink, form.CustomID

	if err := h.validate.Struct(form); err != nil {
		page.danger(formValidationMessage(err))
		c.HTML(http.StatusBadRequest, "index.html", page)
		return
	}

	urlMap, err := h.service.CreateShortURL(ctx, form.OriginalLink, form.CustomID)
	if err != nil {
		status, message := h.classify(c, err)
		page.danger(message)
		c.HTML(status, "index.html", page)
		return
	}

	h.log(c).Info("Short link created", zap.String("short", urlMap.Short), zap.String("url", urlMap.Original))
	page.ShortLink = h.shortLink(c, urlMap.Short)
	page.success(msgLinkCreated)
	c.HTML(http.StatusOK, "index.html", page)
}

// FilesPage renders the upload form and handles its submission.
func (h *URLHandler) FilesPage(c *gin.Context) {
	page := pageData{ActivePage: "files"}
	if c.Request.Method != http.MethodPost {
		c.HTML(http.StatusOK, "files.html", page)
		return
	}

	files, err := h.readUploads(c)
	if err != nil {
		status, message := http.StatusBadRequest, msgNoFiles
		if errors.Is(err, errUploadTooLarge) {
			status, message = http.StatusRequestEntityTooLarge, msgUploadTooLarge
		} else {
			h.log(c).Warn("Error reading upload", zap.Error(err))
		}
		page.danger(message)
		c.HTML(status, "files.html", page)
		return
	}
	if len(files) == 0 {
		page.danger(msgNoFiles)
		c.HTML(http.StatusBadRequest, "files.html", page)
		return
	}

	uploaded, err := h.uploads.UploadFiles(c.Request.Context(), files, h.config.DiskToken)
	if err != nil {
		status, message := h.classify(c, err)
		page.danger(message)
		c.HTML(status, "files.html", page)
		return
	}

	page.Uploaded = h.uploadedResponse(c, uploaded)
	page.success(msgFilesUploaded)
	c.HTML(http.StatusOK, "files.html", page)
}

func formValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == "required" {
				return msgRequiredField
			}
		}
	}
	return msgEnterValidURL
}
