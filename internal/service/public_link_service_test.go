package service_test

import (
	"context"
	"testing"

	"github.com/dom/coinshelf/internal/domain"
	"github.com/dom/coinshelf/internal/repository/postgres"
	"github.com/dom/coinshelf/internal/service"
	"github.com/dom/coinshelf/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicLinkService_Lifecycle(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	linkService := service.NewPublicLinkService(repos.PublicLink, repos.Item)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().WithUsername("numis").WithDisplayName("Numis Matic").Build(t, testDB.DB)
	testutil.NewItemBuilder().WithOwner(user).WithValue(42).Build(t, repos.Item)

	_, err := linkService.Get(ctx, user.ID)
	require.ErrorIs(t, err, domain.ErrLinkNotFound)

	first, err := linkService.Create(ctx, user.ID)
	require.NoError(t, err)
	require.NotEmpty(t, first.PublicID)

	view, err := linkService.View(ctx, first.PublicID)
	require.NoError(t, err)
	assert.Equal(t, "numis", view.Owner.Username)
	assert.Equal(t, "Numis Matic", view.Owner.DisplayName)
	assert.Empty(t, view.Owner.Email)
	require.Len(t, view.Items, 1)
	require.NotNil(t, view.Items[0].Value)

	t.Run("rotating invalidates the old id", func(t *testing.T) {
		second, err := linkService.Create(ctx, user.ID)
		require.NoError(t, err)
		assert.NotEqual(t, first.PublicID, second.PublicID)

		_, err = linkService.View(ctx, first.PublicID)
		assert.ErrorIs(t, err, domain.ErrLinkNotFound)

		_, err = linkService.View(ctx, second.PublicID)
		assert.NoError(t, err)

		current, err := linkService.Get(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, second.PublicID, current.PublicID)
	})

	t.Run("revoking removes the link", func(t *testing.T) {
		current, err := linkService.Get(ctx, user.ID)
		require.NoError(t, err)

		require.NoError(t, linkService.Revoke(ctx, user.ID))

		_, err = linkService.View(ctx, current.PublicID)
		assert.ErrorIs(t, err, domain.ErrLinkNotFound)
		assert.ErrorIs(t, linkService.Revoke(ctx, user.ID), domain.ErrLinkNotFound)
	})
}

func TestPublicLinkService_ViewHonoursVisibility(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	linkService := service.NewPublicLinkService(repos.PublicLink, repos.Item)
	ctx := context.Background()

	tests := []struct {
		name       string
		showEmail  bool
		showValues bool
	}{
		{name: "everything hidden", showEmail: false, showValues: false},
		{name: "email shown", showEmail: true, showValues: false},
		{name: "values shown", showEmail: false, showValues: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, _ := testutil.NewUserBuilder().WithVisibility(tt.showEmail, tt.showValues).Build(t, testDB.DB)
			testutil.NewItemBuilder().WithOwner(user).WithValue(99.5).Build(t, repos.Item)

			link, err := linkService.Create(ctx, user.ID)
			require.NoError(t, err)

			view, err := linkService.View(ctx, link.PublicID)
			require.NoError(t, err)
			require.Len(t, view.Items, 1)

			assert.Equal(t, tt.showValues, view.ShowValues)
			if tt.showEmail {
				assert.Equal(t, user.Email, view.Owner.Email)
			} else {
				assert.Empty(t, view.Owner.Email)
			}
			if tt.showValues {
				require.NotNil(t, view.Items[0].Value)
				assert.InDelta(t, 99.5, *view.Items[0].Value, 0.001)
			} else {
				assert.Nil(t, view.Items[0].Value)
			}
		})
	}
}
