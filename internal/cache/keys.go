package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"path"
	"strings"
)

// KeyPrefix constants for the record kinds kept in the store
const (
	PrefixCapture  = "capture"
	PrefixAlias    = "alias"
	PrefixMetadata = "meta"
)

// GenerateKey generates a cache key from a URL
// The key is a SHA256 hash of the normalized URL
func GenerateKey(rawURL string) string {
	normalized := normalizeForKey(rawURL)
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:])
}

// GenerateKeyWithPrefix generates a cache key with a prefix
func GenerateKeyWithPrefix(prefix, rawURL string) string {
	return prefix + ":" + GenerateKey(rawURL)
}

// normalizeForKey normalizes a URL so equivalent spellings share a key.
// The query string is significant and kept as-is.
func normalizeForKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	if u.Scheme == "" && u.Host != "" {
		u.Scheme = "https"
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	if (u.Scheme == "http" && u.Port() == "80") ||
		(u.Scheme == "https" && u.Port() == "443") {
		u.Host = u.Hostname()
	}

	if u.Path == "" {
		u.Path = "/"
	} else {
		trailing := strings.HasSuffix(u.Path, "/")
		u.Path = path.Clean(u.Path)
		if trailing && u.Path != "/" {
			u.Path += "/"
		}
	}

	u.Fragment = ""

	return u.String()
}

// CaptureKey generates the key holding a captured resource
func CaptureKey(url string) string {
	return GenerateKeyWithPrefix(PrefixCapture, url)
}

// AliasKey generates the key holding an alias link
func AliasKey(url string) string {
	return GenerateKeyWithPrefix(PrefixAlias, url)
}

// MetadataKey generates a key for a named metadata value
func MetadataKey(name string) string {
	return PrefixMetadata + ":" + name
}

// SameURL reports whether two URLs map to the same key
func SameURL(a, b string) bool {
	return normalizeForKey(a) == normalizeForKey(b)
}
