package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dom/coinshelf/internal/domain"
	"github.com/dom/coinshelf/internal/repository"
	"github.com/dom/coinshelf/internal/repository/postgres"
	"github.com/dom/coinshelf/internal/service"
	"github.com/dom/coinshelf/internal/storage"
	"github.com/dom/coinshelf/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func setupItemService(t *testing.T, images service.ImageUploader) (*testutil.TestDB, *repository.Repositories, *service.ItemService) {
	t.Helper()
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	prices := service.NewPriceService(testutil.DefaultStubPrices(), repos.PriceSnapshot)
	return testDB, repos, service.NewItemService(repos.Item, prices, images)
}

func TestItemService_Create(t *testing.T) {
	testDB, _, itemService := setupItemService(t, nil)
	ctx := context.Background()
	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	tests := []struct {
		name    string
		input   service.ItemInput
		wantErr error
		check   func(t *testing.T, item *domain.Item)
	}{
		{
			name:  "coin is classified from country and year",
			input: service.ItemInput{Country: "South Africa", Year: intPtr(2020), Denomination: "5 Rand"},
			check: func(t *testing.T, item *domain.Item) {
				assert.Equal(t, domain.CategoryCoin, item.Category())
				assert.Equal(t, domain.RegionAfrica, item.Region)
				assert.False(t, item.IsHistorical)
				assert.Equal(t, 1, item.Quantity)
			},
		},
		{
			name:  "historical country",
			input: service.ItemInput{Category: "banknote", Country: "Rome", Year: intPtr(1850), Denomination: "Denarius"},
			check: func(t *testing.T, item *domain.Item) {
				assert.Equal(t, domain.CategoryBanknote, item.Category())
				assert.Equal(t, domain.RegionAncient, item.Region)
				assert.True(t, item.IsHistorical)
			},
		},
		{
			name:  "year zero is unknown",
			input: service.ItemInput{Country: "France", Year: intPtr(0), Denomination: "1 Franc"},
			check: func(t *testing.T, item *domain.Item) {
				assert.Nil(t, item.Year)
				assert.Equal(t, domain.RegionEurope, item.Region)
				assert.False(t, item.IsHistorical)
			},
		},
		{
			name: "bullion keeps weight and purity",
			input: service.ItemInput{
				Category: "bullion_gold", Country: "South Africa", Year: intPtr(2023),
				Denomination: "ignored", WeightGrams: floatPtr(31.1), PurityPercent: floatPtr(91.67),
			},
			check: func(t *testing.T, item *domain.Item) {
				b, ok := item.Bullion()
				require.True(t, ok)
				assert.Equal(t, domain.MetalGold, b.Metal)
				assert.InDelta(t, 31.1, b.WeightGrams, 0.0001)
				assert.InDelta(t, 91.67, b.PurityPercent, 0.0001)
				assert.Empty(t, item.Denomination())
			},
		},
		{
			name:  "markup is stripped from free text",
			input: service.ItemInput{Country: "Canada", Denomination: "1 Dollar", Notes: "<b>Loonie</b> & friends<script>alert(1)</script>"},
			check: func(t *testing.T, item *domain.Item) {
				assert.Equal(t, "Loonie & friends", item.Notes)
			},
		},
		{
			name:    "missing country",
			input:   service.ItemInput{Denomination: "1 Cent"},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "coin without denomination",
			input:   service.ItemInput{Country: "Kenya"},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "zero quantity",
			input:   service.ItemInput{Country: "Kenya", Denomination: "1 Shilling", Quantity: intPtr(0)},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "purity above 100",
			input:   service.ItemInput{Category: "bullion_silver", Country: "Mexico", WeightGrams: floatPtr(31), PurityPercent: floatPtr(150)},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "negative value",
			input:   service.ItemInput{Country: "Kenya", Denomination: "1 Shilling", Value: floatPtr(-1)},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "unknown category",
			input:   service.ItemInput{Category: "stamp", Country: "Kenya", Denomination: "1 Shilling"},
			wantErr: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := itemService.Create(ctx, user.ID, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, item.ID)
			assert.Equal(t, user.ID, item.UserID)
			tt.check(t, item)

			stored, err := itemService.Get(ctx, user.ID, item.ID)
			require.NoError(t, err)
			assert.Equal(t, item.Region, stored.Region)
			assert.Equal(t, item.Category(), stored.Category())
		})
	}
}

func TestItemService_UpdateAndOwnership(t *testing.T) {
	testDB, repos, itemService := setupItemService(t, nil)
	ctx := context.Background()
	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	item := testutil.NewItemBuilder().WithOwner(owner).Build(t, repos.Item)

	t.Run("update reclassifies", func(t *testing.T) {
		updated, err := itemService.Update(ctx, owner.ID, item.ID, service.ItemPatch{
			Country: strPtr("Rhodesia"), Year: intPtr(1975), Denomination: strPtr("1 Dollar"), Quantity: intPtr(3),
		})
		require.NoError(t, err)
		assert.Equal(t, item.ID, updated.ID)
		assert.Equal(t, domain.RegionAncient, updated.Region)
		assert.True(t, updated.IsHistorical)
		assert.Equal(t, 3, updated.Quantity)
	})

	t.Run("other users cannot read", func(t *testing.T) {
		_, err := itemService.Get(ctx, other.ID, item.ID)
		assert.ErrorIs(t, err, domain.ErrItemNotFound)
	})

	t.Run("other users cannot update", func(t *testing.T) {
		_, err := itemService.Update(ctx, other.ID, item.ID, service.ItemPatch{Country: strPtr("Chile")})
		assert.ErrorIs(t, err, domain.ErrItemNotFound)
	})

	t.Run("other users cannot delete", func(t *testing.T) {
		assert.ErrorIs(t, itemService.Delete(ctx, other.ID, item.ID), domain.ErrItemNotFound)
	})

	t.Run("owner deletes", func(t *testing.T) {
		require.NoError(t, itemService.Delete(ctx, owner.ID, item.ID))
		_, err := itemService.Get(ctx, owner.ID, item.ID)
		assert.ErrorIs(t, err, domain.ErrItemNotFound)
	})
}

func TestItemService_UpdateKeepsOmittedFields(t *testing.T) {
	testDB, repos, itemService := setupItemService(t, nil)
	ctx := context.Background()
	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	bar := testutil.NewItemBuilder().
		WithOwner(owner).
		WithCountry("South Africa").
		WithBullion(domain.CategoryBullionGold, 31.1, 99.9).
		WithQuantity(5).
		WithValue(40).
		WithNotes("vault").
		WithImageURL("https://img.example/bar.jpg").
		Build(t, repos.Item)

	tests := []struct {
		name  string
		patch service.ItemPatch
		check func(t *testing.T, got *domain.Item)
	}{
		{
			name:  "country only",
			patch: service.ItemPatch{Country: strPtr("Canada")},
			check: func(t *testing.T, got *domain.Item) {
				assert.Equal(t, domain.CategoryBullionGold, got.Category())
				assert.Equal(t, 5, got.Quantity)
				require.NotNil(t, got.Value)
				assert.Equal(t, 40.0, *got.Value)
				assert.Equal(t, "vault", got.Notes)
				assert.Equal(t, "https://img.example/bar.jpg", got.ImageURL)
				assert.Equal(t, domain.RegionNorthAmerica, got.Region)
				b, ok := got.Bullion()
				require.True(t, ok)
				assert.Equal(t, 31.1, b.WeightGrams)
				assert.Equal(t, 99.9, b.PurityPercent)
			},
		},
		{
			name:  "purity only",
			patch: service.ItemPatch{PurityPercent: floatPtr(91.67)},
			check: func(t *testing.T, got *domain.Item) {
				b, ok := got.Bullion()
				require.True(t, ok)
				assert.Equal(t, 31.1, b.WeightGrams)
				assert.Equal(t, 91.67, b.PurityPercent)
				assert.Equal(t, "Canada", got.Country)
			},
		},
		{
			name:  "notes can be cleared",
			patch: service.ItemPatch{Notes: strPtr("")},
			check: func(t *testing.T, got *domain.Item) {
				assert.Empty(t, got.Notes)
				assert.Equal(t, 5, got.Quantity)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated, err := itemService.Update(ctx, owner.ID, bar.ID, tt.patch)
			require.NoError(t, err)
			tt.check(t, updated)

			stored, err := repos.Item.GetByID(ctx, owner.ID, bar.ID)
			require.NoError(t, err)
			tt.check(t, stored)
		})
	}

	t.Run("invalid patch leaves the item alone", func(t *testing.T) {
		_, err := itemService.Update(ctx, owner.ID, bar.ID, service.ItemPatch{Quantity: intPtr(0)})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		stored, err := repos.Item.GetByID(ctx, owner.ID, bar.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, stored.Quantity)
	})
}

func TestItemService_BulkUpload(t *testing.T) {
	testDB, _, itemService := setupItemService(t, nil)
	ctx := context.Background()
	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	result, err := itemService.BulkUpload(ctx, user.ID, []service.ItemInput{
		{Country: "Japan", Year: intPtr(1990), Denomination: "100 Yen"},
		{Denomination: "no country"},
		{Category: "Gold Bullion", Country: "Canada", WeightGrams: floatPtr(31.1), PurityPercent: floatPtr(99.99), ImageURL: "https://img.example.com/maple.jpg"},
		{Country: "Brazil", Denomination: "1 Real", Quantity: intPtr(-2)},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Added)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 1, result.Errors[0].Index)
	assert.Equal(t, "country is required", result.Errors[0].Message)
	assert.Equal(t, 3, result.Errors[1].Index)

	items, err := itemService.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	byCountry := map[string]*domain.Item{}
	for _, item := range items {
		byCountry[item.Country] = item
	}
	assert.Equal(t, domain.CategoryCoin, byCountry["Japan"].Category())
	assert.Equal(t, domain.PlaceholderImage, byCountry["Japan"].ImageURL)
	assert.Equal(t, domain.CategoryBullionGold, byCountry["Canada"].Category())
	assert.Equal(t, "https://img.example.com/maple.jpg", byCountry["Canada"].ImageURL)

	t.Run("nothing valid adds nothing", func(t *testing.T) {
		result, err := itemService.BulkUpload(ctx, user.ID, []service.ItemInput{{}, {Country: "Peru"}})
		require.NoError(t, err)
		assert.Zero(t, result.Added)
		assert.Len(t, result.Errors, 2)
	})
}

func TestItemService_ClearAll(t *testing.T) {
	testDB, repos, itemService := setupItemService(t, nil)
	ctx := context.Background()
	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	for i := 0; i < 3; i++ {
		testutil.NewItemBuilder().WithOwner(user).Build(t, repos.Item)
	}
	kept := testutil.NewItemBuilder().WithOwner(other).Build(t, repos.Item)

	deleted, err := itemService.ClearAll(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	items, err := itemService.List(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = itemService.Get(ctx, other.ID, kept.ID)
	assert.NoError(t, err)
}

func TestItemService_Duplicates(t *testing.T) {
	testDB, repos, itemService := setupItemService(t, nil)
	ctx := context.Background()
	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	a := testutil.NewItemBuilder().WithOwner(user).Build(t, repos.Item)
	b := testutil.NewItemBuilder().WithOwner(user).Build(t, repos.Item)
	testutil.NewItemBuilder().WithOwner(user).WithYear(2021).Build(t, repos.Item)
	c := testutil.NewItemBuilder().WithOwner(user).Build(t, repos.Item)

	groups, err := itemService.Duplicates(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, 3, groups[0].Count)
	assert.Equal(t, domain.DuplicateKey{Country: "south africa", Year: "2020", Denomination: "5 rand"}, groups[0].Key)

	ids := []uuid.UUID{groups[0].Items[0].ID, groups[0].Items[1].ID, groups[0].Items[2].ID}
	assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID, c.ID}, ids)
}

func TestItemService_Merge(t *testing.T) {
	testDB, repos, itemService := setupItemService(t, nil)
	ctx := context.Background()
	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	t.Run("folds quantities, notes and value into the first item", func(t *testing.T) {
		base := testutil.NewItemBuilder().WithOwner(user).WithQuantity(1).WithNotes("from dad").Build(t, repos.Item)
		second := testutil.NewItemBuilder().WithOwner(user).WithQuantity(2).WithNotes("market find").WithValue(12.5).
			WithImageURL("https://img.example.com/krugerrand.jpg").Build(t, repos.Item)
		third := testutil.NewItemBuilder().WithOwner(user).WithQuantity(3).WithNotes("from dad").WithValue(8).
			WithReferenceURL("https://en.numista.com/catalogue/pieces1.html").Build(t, repos.Item)

		merged, err := itemService.Merge(ctx, user.ID, []uuid.UUID{base.ID, second.ID, third.ID, second.ID})
		require.NoError(t, err)

		assert.Equal(t, base.ID, merged.ID)
		assert.Equal(t, 6, merged.Quantity)
		assert.Equal(t, "from dad\n\nmarket find", merged.Notes)
		require.NotNil(t, merged.Value)
		assert.InDelta(t, 12.5, *merged.Value, 0.001)
		assert.Equal(t, "https://img.example.com/krugerrand.jpg", merged.ImageURL)
		assert.Equal(t, "https://en.numista.com/catalogue/pieces1.html", merged.ReferenceURL)

		items, err := itemService.List(ctx, user.ID)
		require.NoError(t, err)
		testutil.AssertItemIDs(t, items, base.ID)
		assert.Equal(t, 6, items[0].Quantity)
	})

	t.Run("needs two distinct items", func(t *testing.T) {
		item := testutil.NewItemBuilder().WithOwner(user).Build(t, repos.Item)
		_, err := itemService.Merge(ctx, user.ID, []uuid.UUID{item.ID, item.ID})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("refuses items owned by someone else", func(t *testing.T) {
		mine := testutil.NewItemBuilder().WithOwner(user).Build(t, repos.Item)
		theirs := testutil.NewItemBuilder().WithOwner(other).Build(t, repos.Item)

		_, err := itemService.Merge(ctx, user.ID, []uuid.UUID{mine.ID, theirs.ID})
		assert.ErrorIs(t, err, domain.ErrItemNotFound)

		_, err = itemService.Get(ctx, other.ID, theirs.ID)
		assert.NoError(t, err)
	})
}

func TestItemService_MergeIsAtomic(t *testing.T) {
	testDB, repos, itemService := setupItemService(t, nil)
	ctx := context.Background()
	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	base := testutil.NewItemBuilder().WithOwner(user).WithQuantity(1).Build(t, repos.Item)
	second := testutil.NewItemBuilder().WithOwner(user).WithQuantity(2).Build(t, repos.Item)
	third := testutil.NewItemBuilder().WithOwner(user).WithQuantity(3).Build(t, repos.Item)

	// Fail the second delete issued while the callback is installed.
	const callbackName = "test:fail_second_delete"
	deletes := 0
	err := testDB.DB.Callback().Delete().Before("gorm:delete").Register(callbackName, func(tx *gorm.DB) {
		deletes++
		if deletes == 2 {
			tx.AddError(errors.New("injected delete failure"))
		}
	})
	require.NoError(t, err)
	t.Cleanup(func() { testDB.DB.Callback().Delete().Remove(callbackName) })

	_, err = itemService.Merge(ctx, user.ID, []uuid.UUID{base.ID, second.ID, third.ID})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrItemNotFound)
	assert.Equal(t, 2, deletes)

	items, err := itemService.List(ctx, user.ID)
	require.NoError(t, err)
	testutil.AssertItemIDs(t, items, base.ID, second.ID, third.ID)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, 2, items[1].Quantity)
	assert.Equal(t, 3, items[2].Quantity)
}

func TestItemService_Stats(t *testing.T) {
	testDB, repos, itemService := setupItemService(t, nil)
	ctx := context.Background()
	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	testutil.NewItemBuilder().WithOwner(user).WithQuantity(2).WithValue(10).Build(t, repos.Item)
	testutil.NewItemBuilder().WithOwner(user).WithCountry("Rome").WithYear(0).WithDenomination("Denarius").Build(t, repos.Item)
	testutil.NewItemBuilder().WithOwner(user).WithCountry("Canada").
		WithBullion(domain.CategoryBullionGold, domain.TroyOunceGrams, 100).WithQuantity(2).Build(t, repos.Item)

	stats, err := itemService.Stats(ctx, user.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Records)
	assert.Equal(t, 5, stats.TotalQuantity)
	assert.InDelta(t, 20, stats.TotalValue, 0.001)
	assert.Equal(t, 1, stats.HistoricalCount)
	assert.Equal(t, 2, stats.ByRegion[domain.RegionAfrica])
	assert.Equal(t, 1, stats.ByRegion[domain.RegionAncient])
	assert.Equal(t, 2, stats.ByCategory[domain.CategoryBullionGold])
	assert.InDelta(t, 4000, stats.Bullion.GoldMeltUSD, 0.01)
	assert.Equal(t, "stub", stats.Bullion.PriceSource)
}

type fakeUploader struct {
	err error
}

func (f fakeUploader) PresignImageUpload(ctx context.Context, userID, itemID uuid.UUID, contentType string) (*storage.Upload, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &storage.Upload{
		Method:    "PUT",
		URL:       "https://bucket.example.com/signed",
		Key:       "items/" + userID.String() + "/" + itemID.String() + "/x.png",
		PublicURL: "https://cdn.example.com/items/x.png",
	}, nil
}

func TestItemService_RequestImageUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("points the item at the uploaded object", func(t *testing.T) {
		testDB, repos, itemService := setupItemService(t, fakeUploader{})
		user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
		item := testutil.NewItemBuilder().WithOwner(user).Build(t, repos.Item)

		upload, updated, err := itemService.RequestImageUpload(ctx, user.ID, item.ID, "image/png")
		require.NoError(t, err)
		assert.Equal(t, "https://bucket.example.com/signed", upload.URL)
		assert.Equal(t, "https://cdn.example.com/items/x.png", updated.ImageURL)

		stored, err := itemService.Get(ctx, user.ID, item.ID)
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/items/x.png", stored.ImageURL)
	})

	t.Run("storage not configured", func(t *testing.T) {
		testDB, repos, itemService := setupItemService(t, fakeUploader{err: domain.ErrStorageUnavailable})
		user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
		item := testutil.NewItemBuilder().WithOwner(user).Build(t, repos.Item)

		_, _, err := itemService.RequestImageUpload(ctx, user.ID, item.ID, "image/png")
		assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	})
}
