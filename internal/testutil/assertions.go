package testutil

import (
	"testing"

	"github.com/dom/coinshelf/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// AssertItemIDs verifies the ids of items, in order
func AssertItemIDs(t *testing.T, items []*domain.Item, expected ...uuid.UUID) {
	t.Helper()
	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	assert.Equal(t, expected, ids, "unexpected item ids")
}
