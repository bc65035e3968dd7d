package converter

import (
	"bytes"
	"io"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

// DetectEncoding returns the canonical charset name of an HTML body.
// A BOM wins, then the charset parameter of contentType, then <meta> tags;
// undeclared content is sniffed for UTF-8 and otherwise treated as
// windows-1252.
func DetectEncoding(content []byte, contentType string) string {
	_, name, _ := charset.DetermineEncoding(content, contentType)
	if name == "" {
		return "utf-8"
	}
	return name
}

// ToUTF8 decodes content to UTF-8
func ToUTF8(content []byte, contentType string) ([]byte, error) {
	enc, name, _ := charset.DetermineEncoding(content, contentType)
	if enc == nil || name == "utf-8" {
		return content, nil
	}

	reader := transform.NewReader(bytes.NewReader(content), enc.NewDecoder())
	return io.ReadAll(reader)
}

// IsUTF8 reports whether content is already UTF-8
func IsUTF8(content []byte, contentType string) bool {
	return DetectEncoding(content, contentType) == "utf-8"
}
