package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader loads and validates manifest definition files
type Loader struct{}

// NewLoader creates a new definitions loader
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads and parses a definitions file from the given path
func (l *Loader) Load(path string) (*Definitions, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definitions file: %w", err)
	}

	return l.LoadFromBytes(data, filepath.Ext(path))
}

// LoadFromBytes parses definitions from raw bytes
func (l *Loader) LoadFromBytes(data []byte, ext string) (*Definitions, error) {
	ext = strings.ToLower(ext)

	var defs Definitions
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &defs); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &defs); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedExt, ext)
	}

	l.normalize(&defs)

	if err := defs.Validate(); err != nil {
		return nil, err
	}

	return &defs, nil
}

func (l *Loader) normalize(defs *Definitions) {
	for i := range defs.Manifests {
		m := &defs.Manifests[i]
		m.Name = strings.Trim(strings.TrimSpace(m.Name), "/")
		m.Version = strings.TrimSpace(m.Version)
		for j := range m.URLs {
			m.URLs[j].URL = strings.TrimSpace(m.URLs[j].URL)
		}
	}
}
