package utils

import (
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// MaxFilenameLength caps a single exported path segment
const MaxFilenameLength = 200

var (
	unsafeChars = regexp.MustCompile(`[<>:"|?*\\/\x00-\x1f]`)
	dashRuns    = regexp.MustCompile(`[-\s]+`)
)

// Windows refuses these base names regardless of extension
var reservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// SanitizeFilename turns one URL path segment into a portable file name
func SanitizeFilename(name string) string {
	name = dashRuns.ReplaceAllString(unsafeChars.ReplaceAllString(name, "-"), "-")

	if strings.Trim(name, ".-") == "" {
		return "_"
	}

	ext := filepath.Ext(name)
	base := strings.Trim(strings.TrimSuffix(name, ext), "-")
	if reservedNames[strings.ToUpper(base)] {
		base = "_" + base
	}
	if len(base)+len(ext) > MaxFilenameLength {
		base = base[:MaxFilenameLength-len(ext)]
	}
	return base + ext
}

// URLToPath converts a URL to a relative export path of the form
// <host>/<path>. Directory URLs map to index.html and a query string is
// folded into the file name so distinct queries do not collide.
func URLToPath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return SanitizeFilename(rawURL)
	}

	p := u.Path
	if p == "" || strings.HasSuffix(p, "/") {
		p += "index.html"
	}

	parts := strings.Split(strings.Trim(p, "/"), "/")
	for i, part := range parts {
		parts[i] = SanitizeFilename(part)
	}

	if u.RawQuery != "" {
		last := parts[len(parts)-1]
		ext := filepath.Ext(last)
		parts[len(parts)-1] = strings.TrimSuffix(last, ext) + "-" + SanitizeFilename(u.RawQuery) + ext
	}

	if u.Host != "" {
		parts = append([]string{SanitizeFilename(strings.ToLower(u.Host))}, parts...)
	}

	return filepath.Join(parts...)
}

// EnsureParentDir creates the directory that will hold path
func EnsureParentDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0755)
}

// ExpandPath expands a leading ~ to the user's home directory
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
