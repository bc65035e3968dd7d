package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// IndexEntry describes one exported file
type IndexEntry struct {
	URL         string    `json:"url"`
	Path        string    `json:"path"`
	ContentType string    `json:"content_type,omitempty"`
	Size        int       `json:"size"`
	CapturedAt  time.Time `json:"captured_at"`
}

// IndexDocument is the JSON index written next to an export
type IndexDocument struct {
	GeneratedAt time.Time    `json:"generated_at"`
	SiteURL     string       `json:"site_url,omitempty"`
	Format      Format       `json:"format"`
	Total       int          `json:"total"`
	Entries     []IndexEntry `json:"entries"`
}

// Index collects the files of one export
type Index struct {
	mu       sync.Mutex
	entries  []IndexEntry
	baseDir  string
	filename string
	siteURL  string
	format   Format
}

// IndexOptions contains options for an Index
type IndexOptions struct {
	BaseDir  string
	Filename string
	SiteURL  string
	Format   Format
}

// NewIndex creates an empty Index
func NewIndex(opts IndexOptions) *Index {
	filename := opts.Filename
	if filename == "" {
		filename = "index.json"
	}
	return &Index{
		baseDir:  opts.BaseDir,
		filename: filename,
		siteURL:  opts.SiteURL,
		format:   opts.Format,
	}
}

// Add records a file written at entry.Path, relative to the export directory
func (i *Index) Add(entry IndexEntry) {
	entry.Path = filepath.ToSlash(entry.Path)

	i.mu.Lock()
	defer i.mu.Unlock()
	i.entries = append(i.entries, entry)
}

// Count returns the number of recorded files
func (i *Index) Count() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.entries)
}

// Document returns a snapshot sorted by URL
func (i *Index) Document() *IndexDocument {
	i.mu.Lock()
	entries := make([]IndexEntry, len(i.entries))
	copy(entries, i.entries)
	i.mu.Unlock()

	sort.Slice(entries, func(a, b int) bool { return entries[a].URL < entries[b].URL })

	return &IndexDocument{
		GeneratedAt: time.Now(),
		SiteURL:     i.siteURL,
		Format:      i.format,
		Total:       len(entries),
		Entries:     entries,
	}
}

// Flush writes the index file
func (i *Index) Flush() error {
	data, err := json.MarshalIndent(i.Document(), "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(i.baseDir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(i.baseDir, i.filename), data, 0644)
}
