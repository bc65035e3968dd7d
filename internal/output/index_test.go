package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_AddAndDocument(t *testing.T) {
	idx := NewIndex(IndexOptions{BaseDir: t.TempDir(), Format: FormatMarkdown})

	idx.Add(IndexEntry{URL: "http://a/z", Path: filepath.Join("a", "z.md")})
	idx.Add(IndexEntry{URL: "http://a/b", Path: filepath.Join("a", "b.md")})

	doc := idx.Document()
	assert.Equal(t, 2, doc.Total)
	assert.Equal(t, FormatMarkdown, doc.Format)
	assert.Equal(t, "http://a/b", doc.Entries[0].URL)
	assert.Equal(t, "a/b.md", doc.Entries[0].Path)
}

func TestIndex_ConcurrentAdd(t *testing.T) {
	idx := NewIndex(IndexOptions{BaseDir: t.TempDir()})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			idx.Add(IndexEntry{URL: "http://a/"})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, idx.Count())
}

func TestIndex_Flush(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	idx := NewIndex(IndexOptions{BaseDir: dir, Filename: "files.json", SiteURL: "http://a/"})
	idx.Add(IndexEntry{URL: "http://a/", Path: "a/index.html", Size: 3})

	require.NoError(t, idx.Flush())

	data, err := os.ReadFile(filepath.Join(dir, "files.json"))
	require.NoError(t, err)

	var doc IndexDocument
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "http://a/", doc.SiteURL)
	assert.Equal(t, 1, doc.Total)
	assert.Equal(t, 3, doc.Entries[0].Size)
}
