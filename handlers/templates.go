package handlers

import (
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"yacut/types"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded HTML pages.
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))
}

type flash struct {
	Category string
	Text     string
}

// pageData is the view model shared by all pages.
type pageData struct {
	ActivePage   string
	Messages     []flash
	OriginalLink string
	CustomID     string
	ShortLink    string
	Uploaded     []types.UploadedFileResponse
	Status       int
	Message      string
}

func (p *pageData) success(text string) {
	p.Messages = append(p.Messages, flash{Category: "success", Text: text})
}

func (p *pageData) danger(text string) {
	p.Messages = append(p.Messages, flash{Category: "danger", Text: text})
}

func isAPIPath(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/")
}

// renderError answers with JSON under /api/ and with the HTML error page elsewhere.
func renderError(c *gin.Context, status int, message string) {
	if isAPIPath(c) {
		c.AbortWithStatusJSON(status, types.MessageResponse{Message: message})
		return
	}
	c.HTML(status, "error.html", pageData{Status: status, Message: message})
	c.Abort()
}

func statusMessage(status int) string {
	switch status {
	case http.StatusNotFound:
		return msgPageNotFound
	case http.StatusInternalServerError:
		return msgInternalError
	default:
		return http.StatusText(status)
	}
}
