package offline

import (
	"sync"
	"testing"

	"github.com/quantmind-br/offsync/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestDownloadQueue_FIFO(t *testing.T) {
	q := NewDownloadQueue()
	q.Push(domain.URLItem{URL: "/a"}, domain.URLItem{URL: "/b", Aliases: []string{"/b-alt"}})
	q.Push(domain.URLItem{URL: "/c"})

	assert.Equal(t, 3, q.Len())
	assert.Len(t, q.Items(), 3)

	for _, want := range []string{"/a", "/b", "/c"} {
		item, ok := q.Pop()
		assert.True(t, ok)
		assert.Equal(t, want, item.URL)
	}

	_, ok := q.Pop()
	assert.False(t, ok)
	assert.Zero(t, q.Len())
}

func TestDownloadQueue_Clear(t *testing.T) {
	q := NewDownloadQueue()
	q.Push(domain.URLItem{URL: "/a"}, domain.URLItem{URL: "/b"})

	q.Clear()

	assert.Zero(t, q.Len())
	assert.Empty(t, q.Items())
	_, ok := q.Pop()
	assert.False(t, ok)
}

func TestDownloadQueue_ItemsIsACopy(t *testing.T) {
	q := NewDownloadQueue()
	q.Push(domain.URLItem{URL: "/a"})

	items := q.Items()
	items[0].URL = "/changed"

	item, _ := q.Pop()
	assert.Equal(t, "/a", item.URL)
}

func TestDownloadQueue_Concurrent(t *testing.T) {
	q := NewDownloadQueue()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				q.Push(domain.URLItem{URL: "/x"})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1000, q.Len())
}

func TestToken(t *testing.T) {
	var token Token
	assert.False(t, token.Cancelled())

	token.Cancel()
	token.Cancel()
	assert.True(t, token.Cancelled())
}
