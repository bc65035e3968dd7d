package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetCategoryByID(t *testing.T) {
	tests := []struct {
		id       string
		expected string
	}{
		{id: "site", expected: "Site"},
		{id: "storage", expected: "Storage"},
		{id: "network", expected: "Network"},
		{id: "connectivity", expected: "Connectivity"},
		{id: "server", expected: "Server"},
		{id: "logging", expected: "Logging"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			cat := GetCategoryByID(tt.id)
			assert.NotNil(t, cat)
			assert.Equal(t, tt.expected, cat.Name)
		})
	}

	assert.Nil(t, GetCategoryByID("llm"))
}

func TestEveryCategoryHasAForm(t *testing.T) {
	values := FromConfig(defaultConfig())
	for _, cat := range Categories {
		assert.NotNil(t, GetFormForCategory(cat.ID, values), cat.ID)
	}
	assert.Nil(t, GetFormForCategory("unknown", values))
	assert.Len(t, GetCategoryNames(), len(Categories))
}
