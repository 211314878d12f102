// Package utils provides utility functions for the URL shortener service.
package utils

import (
	"html"
	"path"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// fallbackFilename replaces names that sanitise to nothing.
const fallbackFilename = "file"

var (
	strictPolicy = bluemonday.StrictPolicy()

	// separatorReplacer keeps a client-supplied name inside a single path segment.
	separatorReplacer = strings.NewReplacer("/", "_", "\\", "_")
)

// SanitizeFilename strips markup and path separators from a client-supplied filename.
func SanitizeFilename(name string) string {
	cleaned := html.UnescapeString(strictPolicy.Sanitize(name))
	cleaned = strings.TrimSpace(separatorReplacer.Replace(cleaned))
	if cleaned == "" || cleaned == "." || cleaned == ".." {
		return fallbackFilename
	}
	return cleaned
}

// RemotePath builds the cloud-drive path of an uploaded file under root.
// The short ID prefix keeps files with equal names apart.
func RemotePath(root, shortID, filename string) string {
	root = strings.TrimRight(root, "/")
	if root == "" {
		root = "disk:"
	}
	return root + "/" + shortID + "_" + path.Base("/"+SanitizeFilename(filename))
}
