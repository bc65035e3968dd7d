package converter

import "strings"

// IsHTMLContent checks if the content type indicates HTML content.
// An empty content type is treated as HTML.
func IsHTMLContent(contentType string) bool {
	if contentType == "" {
		return true
	}
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "text/html") ||
		strings.Contains(ct, "application/xhtml")
}

// IsCSSContent checks for stylesheets, whose url() references are left as-is
func IsCSSContent(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "text/css")
}
