// Package types defines the data structures used in the URL shortener service.
package types

import "time"

// URLMap is the stored association between a short ID and its original URL.
type URLMap struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Original  string    `gorm:"size:2048;not null" json:"original"`
	Short     string    `gorm:"size:16;not null;uniqueIndex" json:"short"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// URLRequest represents the request body of the short link API.
type URLRequest struct {
	URL      string `json:"url" validate:"required,url,max=2048"`
	CustomID string `json:"custom_id"`
}

// URLResponse represents the response of a successful short link creation.
type URLResponse struct {
	URL       string `json:"url"`
	ShortLink string `json:"short_link"`
}

// OriginalURLResponse represents the response of a short ID lookup.
type OriginalURLResponse struct {
	URL string `json:"url"`
}

// MessageResponse carries a user-facing error message.
type MessageResponse struct {
	Message string `json:"message"`
}

// FileToUpload is a file received from a client, read fully into memory.
type FileToUpload struct {
	Filename string
	Content  []byte
}

// UploadedFile is the outcome of a successful cloud-drive upload.
type UploadedFile struct {
	Filename    string
	ShortID     string
	DownloadURL string
}

// UploadedFileResponse represents one uploaded file in API responses.
type UploadedFileResponse struct {
	Filename  string `json:"filename"`
	ShortLink string `json:"short_link"`
}

// URLForm is the browser form for creating a short link.
type URLForm struct {
	OriginalLink string `form:"original_link" validate:"required,url,max=2048"`
	CustomID     string `form:"custom_id"`
}
