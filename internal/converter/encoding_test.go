package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectEncoding(t *testing.T) {
	tests := []struct {
		name        string
		content     []byte
		contentType string
		expected    string
	}{
		{"meta charset", []byte(`<html><head><meta charset="utf-8"></head></html>`), "", "utf-8"},
		{"uppercase meta charset", []byte(`<html><head><meta charset="UTF-8"></head></html>`), "", "utf-8"},
		{"http-equiv", []byte(`<html><head><meta http-equiv="Content-Type" content="text/html; charset=utf-8"></head></html>`), "", "utf-8"},
		{"header wins over meta", []byte(`<html><head><meta charset="utf-8"></head></html>`), "text/html; charset=iso-8859-2", "iso-8859-2"},
		{"undeclared utf-8", []byte("<p>caf\xc3\xa9</p>"), "text/html", "utf-8"},
		{"undeclared ascii", []byte("<p>plain</p>"), "", "windows-1252"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectEncoding(tt.content, tt.contentType))
		})
	}
}

func TestToUTF8(t *testing.T) {
	t.Run("latin-1 body is decoded", func(t *testing.T) {
		out, err := ToUTF8([]byte("<p>caf\xe9</p>"), "text/html; charset=iso-8859-1")

		require.NoError(t, err)
		assert.Equal(t, "<p>café</p>", string(out))
	})

	t.Run("utf-8 body is returned unchanged", func(t *testing.T) {
		in := []byte(`<meta charset="utf-8"><p>café</p>`)
		out, err := ToUTF8(in, "")

		require.NoError(t, err)
		assert.Equal(t, in, out)
	})
}

func TestIsUTF8(t *testing.T) {
	assert.True(t, IsUTF8([]byte(`<meta charset="utf-8">`), ""))
	assert.False(t, IsUTF8([]byte("<p>x</p>"), "text/html; charset=windows-1252"))
}

func TestContentTypes(t *testing.T) {
	assert.True(t, IsHTMLContent(""))
	assert.True(t, IsHTMLContent("text/html; charset=utf-8"))
	assert.True(t, IsHTMLContent("application/xhtml+xml"))
	assert.False(t, IsHTMLContent("application/json"))
	assert.True(t, IsCSSContent("text/css"))
	assert.False(t, IsCSSContent("text/html"))
}
