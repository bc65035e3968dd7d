package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSyncState_String(t *testing.T) {
	tests := []struct {
		state    SyncState
		expected string
	}{
		{StateOnline, "online"},
		{StateOffline, "offline"},
		{StateCalculatingSync, "calculating_sync"},
		{StateSyncing, "syncing"},
		{StateSyncFailed, "sync_failed"},
		{SyncState(42), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.state.String())
		})
	}
}

func TestSyncState_IsSynchronizing(t *testing.T) {
	assert.True(t, StateCalculatingSync.IsSynchronizing())
	assert.True(t, StateSyncing.IsSynchronizing())
	assert.False(t, StateOnline.IsSynchronizing())
	assert.False(t, StateOffline.IsSynchronizing())
	assert.False(t, StateSyncFailed.IsSynchronizing())
}

func TestMatchQuery_Matches(t *testing.T) {
	tests := []struct {
		name     string
		mq       *MatchQuery
		query    string
		expected bool
	}{
		{"nil matches anything", nil, "view=incoming", true},
		{"empty hasAll matches anything", &MatchQuery{}, "", true},
		{"single param present", &MatchQuery{HasAll: "view=incoming"}, "view=incoming&page=2", true},
		{"single param missing", &MatchQuery{HasAll: "view=incoming"}, "view=to-me", false},
		{"all params present", &MatchQuery{HasAll: "view=to-group&group=dev"}, "group=dev&view=to-group", true},
		{"one param missing", &MatchQuery{HasAll: "view=to-group&group=dev"}, "view=to-group", false},
		{"bare serial", &MatchQuery{HasAll: "1234"}, "1234", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.mq.Matches(tt.query))
		})
	}
}

func TestURLItem_HasLookupRule(t *testing.T) {
	assert.False(t, URLItem{URL: "/a"}.HasLookupRule())
	assert.False(t, URLItem{URL: "/a", Aliases: []string{"/b"}}.HasLookupRule())
	assert.True(t, URLItem{URL: "/a", IgnoreQuery: true}.HasLookupRule())
	assert.True(t, URLItem{URL: "/a", MatchQuery: &MatchQuery{HasAll: "view=x"}}.HasLookupRule())
}

func TestProgress_Done(t *testing.T) {
	assert.False(t, Progress{}.Done())
	assert.False(t, Progress{Completed: 1, Total: 2}.Done())
	assert.True(t, Progress{Completed: 2, Total: 2}.Done())
}
