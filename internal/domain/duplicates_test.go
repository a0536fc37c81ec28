package domain_test

import (
	"testing"

	"github.com/dom/coinshelf/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coin(country string, year *int, denomination string) domain.Item {
	return domain.Item{
		ID:       uuid.New(),
		Country:  country,
		Year:     year,
		Quantity: 1,
		Details:  domain.NumismaticDetails{Kind: domain.CategoryCoin, DenominationLabel: denomination},
	}
}

func floatPtr(v float64) *float64 { return &v }

func TestFindDuplicates(t *testing.T) {
	t.Run("three identical items form one group", func(t *testing.T) {
		items := []domain.Item{
			coin("France", intPtr(1960), "1 Franc"),
			coin(" france", intPtr(1960), "1 franc "),
			coin("FRANCE", intPtr(1960), "1 FRANC"),
		}

		groups := domain.FindDuplicates(items)
		require.Len(t, groups, 1)
		assert.Equal(t, 3, groups[0].Count)
		assert.Equal(t, domain.DuplicateKey{Country: "france", Year: "1960", Denomination: "1 franc"}, groups[0].Key)
		assert.Equal(t, items[0].ID, groups[0].Items[0].ID)
		assert.Equal(t, items[2].ID, groups[0].Items[2].ID)
	})

	t.Run("distinct items produce no groups", func(t *testing.T) {
		items := []domain.Item{
			coin("France", intPtr(1960), "1 Franc"),
			coin("France", intPtr(1961), "1 Franc"),
			coin("France", nil, "1 Franc"),
			coin("Belgium", intPtr(1960), "1 Franc"),
		}
		assert.Empty(t, domain.FindDuplicates(items))
	})

	t.Run("missing years group together", func(t *testing.T) {
		items := []domain.Item{
			coin("Kenya", nil, "5 Shillings"),
			coin("Peru", nil, "1 Sol"),
			coin("Kenya", nil, "5 Shillings"),
		}
		groups := domain.FindDuplicates(items)
		require.Len(t, groups, 1)
		assert.Equal(t, "none", groups[0].Key.Year)
	})

	t.Run("groups ordered by first appearance", func(t *testing.T) {
		items := []domain.Item{
			coin("Peru", nil, "1 Sol"),
			coin("Kenya", nil, "5 Shillings"),
			coin("Kenya", nil, "5 Shillings"),
			coin("Peru", nil, "1 Sol"),
		}
		groups := domain.FindDuplicates(items)
		require.Len(t, groups, 2)
		assert.Equal(t, "peru", groups[0].Key.Country)
		assert.Equal(t, "kenya", groups[1].Key.Country)
	})
}

func TestMergeItems(t *testing.T) {
	a := coin("Rome", intPtr(320), "Follis")
	a.Notes = "Good condition"
	a.ImageURL = domain.PlaceholderImage
	a.Value = floatPtr(10)

	b := coin("Rome", intPtr(320), "Follis")
	b.Quantity = 2
	b.Notes = "  Good condition "
	b.ReferenceURL = "https://en.numista.com/1"
	b.ImageURL = "https://img.example/b.jpg"

	c := coin("Rome", intPtr(320), "Follis")
	c.Quantity = 3
	c.Notes = "Bought in Athens"
	c.ReferenceURL = "https://en.numista.com/2"
	c.Value = floatPtr(25.5)

	merged, removed := domain.MergeItems([]domain.Item{a, b, c})

	assert.Equal(t, a.ID, merged.ID)
	assert.Equal(t, 6, merged.Quantity)
	assert.Equal(t, "Good condition\n\nBought in Athens", merged.Notes)
	assert.Equal(t, "https://en.numista.com/1", merged.ReferenceURL)
	require.NotNil(t, merged.Value)
	assert.Equal(t, 25.5, *merged.Value)
	assert.Equal(t, "https://img.example/b.jpg", merged.ImageURL)
	assert.Equal(t, domain.RegionAncient, merged.Region)
	assert.True(t, merged.IsHistorical)
	assert.Equal(t, []uuid.UUID{b.ID, c.ID}, removed)
}

func TestMergeItems_KeepsRealBaseImageAndNilValue(t *testing.T) {
	a := coin("Kenya", intPtr(2018), "5 Shillings")
	a.ImageURL = "https://img.example/a.jpg"
	b := coin("Kenya", intPtr(2018), "5 Shillings")
	b.ImageURL = "https://img.example/b.jpg"

	merged, _ := domain.MergeItems([]domain.Item{a, b})

	assert.Equal(t, "https://img.example/a.jpg", merged.ImageURL)
	assert.Nil(t, merged.Value)
	assert.Empty(t, merged.Notes)
	assert.Equal(t, 2, merged.Quantity)
}
