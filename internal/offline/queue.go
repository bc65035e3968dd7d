package offline

import (
	"sync"

	"github.com/quantmind-br/offsync/internal/domain"
)

// DownloadQueue is the ordered set of URL items awaiting capture
type DownloadQueue struct {
	mu    sync.Mutex
	items []domain.URLItem
}

// NewDownloadQueue creates an empty queue
func NewDownloadQueue() *DownloadQueue {
	return &DownloadQueue{}
}

// Push appends items in order
func (q *DownloadQueue) Push(items ...domain.URLItem) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, items...)
}

// Pop removes and returns the first item
func (q *DownloadQueue) Pop() (domain.URLItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return domain.URLItem{}, false
	}
	item := q.items[0]
	q.items[0] = domain.URLItem{}
	q.items = q.items[1:]
	return item, true
}

// Len returns the number of pending items
func (q *DownloadQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Clear discards every pending item
func (q *DownloadQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
}

// Items returns a copy of the pending items
func (q *DownloadQueue) Items() []domain.URLItem {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]domain.URLItem(nil), q.items...)
}
