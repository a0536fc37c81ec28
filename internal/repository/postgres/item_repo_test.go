package postgres_test

import (
	"context"
	"testing"

	"github.com/dom/coinshelf/internal/domain"
	"github.com/dom/coinshelf/internal/repository/postgres"
	"github.com/dom/coinshelf/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemRepository_RoundTrip(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewItemRepository(testDB.DB)
	ctx := context.Background()
	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	tests := []struct {
		name  string
		item  *domain.Item
		check func(t *testing.T, got *domain.Item)
	}{
		{
			name: "coin",
			item: testutil.NewItemBuilder().WithOwner(user).WithValue(12.34).WithNotes("note").Item(t),
			check: func(t *testing.T, got *domain.Item) {
				assert.Equal(t, domain.CategoryCoin, got.Category())
				assert.Equal(t, "5 Rand", got.Denomination())
				require.NotNil(t, got.Value)
				assert.InDelta(t, 12.34, *got.Value, 0.001)
				_, isBullion := got.Bullion()
				assert.False(t, isBullion)
			},
		},
		{
			name: "silver bullion",
			item: testutil.NewItemBuilder().WithOwner(user).WithCountry("Mexico").
				WithBullion(domain.CategoryBullionSilver, 31.1, 99.9).Item(t),
			check: func(t *testing.T, got *domain.Item) {
				b, ok := got.Bullion()
				require.True(t, ok)
				assert.Equal(t, domain.MetalSilver, b.Metal)
				assert.InDelta(t, 31.1, b.WeightGrams, 0.0001)
				assert.InDelta(t, 99.9, b.PurityPercent, 0.0001)
				assert.Equal(t, domain.RegionNorthAmerica, got.Region)
			},
		},
		{
			name: "unknown year",
			item: testutil.NewItemBuilder().WithOwner(user).WithYear(0).Item(t),
			check: func(t *testing.T, got *domain.Item) {
				assert.Nil(t, got.Year)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, repo.Create(ctx, tt.item))
			assert.False(t, tt.item.CreatedAt.IsZero())

			got, err := repo.GetByID(ctx, user.ID, tt.item.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.item.Country, got.Country)
			assert.Equal(t, tt.item.Quantity, got.Quantity)
			tt.check(t, got)
		})
	}
}

func TestItemRepository_CheckConstraints(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewItemRepository(testDB.DB)
	ctx := context.Background()
	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	item := testutil.NewItemBuilder().WithOwner(user).Item(t)
	item.Quantity = 0
	assert.Error(t, repo.Create(ctx, item))

	bullion := testutil.NewItemBuilder().WithOwner(user).WithBullion(domain.CategoryBullionGold, 1, 50).Item(t)
	bullion.Details = domain.BullionDetails{Metal: domain.MetalGold, WeightGrams: 1, PurityPercent: 120}
	assert.Error(t, repo.Create(ctx, bullion))
}

func TestItemRepository_GetByIDs(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewItemRepository(testDB.DB)
	ctx := context.Background()
	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	a := testutil.NewItemBuilder().WithOwner(owner).Build(t, repo)
	b := testutil.NewItemBuilder().WithOwner(owner).Build(t, repo)
	c := testutil.NewItemBuilder().WithOwner(owner).Build(t, repo)
	foreign := testutil.NewItemBuilder().WithOwner(other).Build(t, repo)

	t.Run("keeps the requested order", func(t *testing.T) {
		items, err := repo.GetByIDs(ctx, owner.ID, []uuid.UUID{c.ID, a.ID, b.ID})
		require.NoError(t, err)
		testutil.AssertItemIDs(t, items, c.ID, a.ID, b.ID)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := repo.GetByIDs(ctx, owner.ID, []uuid.UUID{a.ID, uuid.New()})
		assert.ErrorIs(t, err, domain.ErrItemNotFound)
	})

	t.Run("someone else's id", func(t *testing.T) {
		_, err := repo.GetByIDs(ctx, owner.ID, []uuid.UUID{a.ID, foreign.ID})
		assert.ErrorIs(t, err, domain.ErrItemNotFound)
	})
}

func TestItemRepository_CreateManyAndDeleteAll(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewItemRepository(testDB.DB)
	ctx := context.Background()
	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	batch := make([]*domain.Item, 0, 150)
	for i := 0; i < 150; i++ {
		batch = append(batch, testutil.NewItemBuilder().WithOwner(owner).WithYear(1900+i).Item(t))
	}
	require.NoError(t, repo.CreateMany(ctx, batch))
	require.NoError(t, repo.CreateMany(ctx, nil))
	testutil.NewItemBuilder().WithOwner(other).Build(t, repo)

	items, err := repo.ListByUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, items, 150)

	deleted, err := repo.DeleteAllByUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(150), deleted)

	remaining, err := repo.ListByUser(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestItemRepository_ApplyMerge(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewItemRepository(testDB.DB)
	ctx := context.Background()
	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	base := testutil.NewItemBuilder().WithOwner(owner).Build(t, repo)
	dup := testutil.NewItemBuilder().WithOwner(owner).Build(t, repo)

	t.Run("unknown removed id rolls back the update", func(t *testing.T) {
		merged := *base
		merged.Quantity = 9
		err := repo.ApplyMerge(ctx, &merged, []uuid.UUID{dup.ID, uuid.New()})
		assert.ErrorIs(t, err, domain.ErrItemNotFound)

		items, err := repo.ListByUser(ctx, owner.ID)
		require.NoError(t, err)
		testutil.AssertItemIDs(t, items, base.ID, dup.ID)
		assert.Equal(t, 1, items[0].Quantity)
	})

	t.Run("applies update and deletes", func(t *testing.T) {
		merged := *base
		merged.Quantity = 2
		require.NoError(t, repo.ApplyMerge(ctx, &merged, []uuid.UUID{dup.ID}))

		items, err := repo.ListByUser(ctx, owner.ID)
		require.NoError(t, err)
		testutil.AssertItemIDs(t, items, base.ID)
		assert.Equal(t, 2, items[0].Quantity)
	})
}
