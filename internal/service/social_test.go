package service_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/testhelpers"
)

func TestSubscribe(t *testing.T) {
	s := setup(t)
	reader := testhelpers.CreateUser(t, s.db, "reader")
	author := testhelpers.CreateUser(t, s.db, "author")
	for i := 0; i < 5; i++ {
		testhelpers.CreateRecipe(t, s.db, author.ID, fmt.Sprintf("Recipe %d", i), nil)
	}

	_, err := s.follows.Subscribe(ctx, reader.ID, reader.ID, 3)
	assert.ErrorIs(t, err, service.ErrSelfFollow)

	_, err = s.follows.Subscribe(ctx, reader.ID, 9999, 3)
	assert.ErrorIs(t, err, service.ErrNotFound)

	entry, err := s.follows.Subscribe(ctx, reader.ID, author.ID, 2)
	require.NoError(t, err)
	assert.True(t, entry.IsSubscribed)
	assert.EqualValues(t, 5, entry.RecipesCount)
	require.Len(t, entry.Recipes, 2)
	assert.Equal(t, "Recipe 4", entry.Recipes[0].Name, "preview is newest first")

	_, err = s.follows.Subscribe(ctx, reader.ID, author.ID, 2)
	assert.ErrorIs(t, err, service.ErrAlreadyExists)

	// the edge is directed
	rep, err := s.users.Get(ctx, author.ID, reader.ID)
	require.NoError(t, err)
	assert.False(t, rep.IsSubscribed)
}

func TestSubscribeHugeRecipesLimit(t *testing.T) {
	s := setup(t)
	reader := testhelpers.CreateUser(t, s.db, "reader")
	author := testhelpers.CreateUser(t, s.db, "author")
	testhelpers.CreateRecipe(t, s.db, author.ID, "Stew", nil)
	testhelpers.CreateRecipe(t, s.db, author.ID, "Soup", nil)

	entry, err := s.follows.Subscribe(ctx, reader.ID, author.ID, math.MaxInt)
	require.NoError(t, err)
	assert.Len(t, entry.Recipes, 2)

	subs, _, err := s.follows.Subscriptions(ctx, reader.ID, service.PageRequest{}, int(1e11))
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Len(t, subs[0].Recipes, 2)
}

func TestUnsubscribe(t *testing.T) {
	s := setup(t)
	reader := testhelpers.CreateUser(t, s.db, "reader")
	author := testhelpers.CreateUser(t, s.db, "author")

	assert.ErrorIs(t, s.follows.Unsubscribe(ctx, reader.ID, author.ID), service.ErrNotPresent)
	assert.ErrorIs(t, s.follows.Unsubscribe(ctx, reader.ID, 9999), service.ErrNotFound)

	_, err := s.follows.Subscribe(ctx, reader.ID, author.ID, 3)
	require.NoError(t, err)
	require.NoError(t, s.follows.Unsubscribe(ctx, reader.ID, author.ID))
	assert.ErrorIs(t, s.follows.Unsubscribe(ctx, reader.ID, author.ID), service.ErrNotPresent)
}

func TestSubscriptions(t *testing.T) {
	s := setup(t)
	reader := testhelpers.CreateUser(t, s.db, "reader")
	var authorIDs []uint
	for i := 0; i < 8; i++ {
		a := testhelpers.CreateUser(t, s.db, fmt.Sprintf("author%d", i))
		authorIDs = append(authorIDs, a.ID)
		testhelpers.CreateRecipe(t, s.db, a.ID, "Dish", nil)
		_, err := s.follows.Subscribe(ctx, reader.ID, a.ID, 3)
		require.NoError(t, err)
	}

	first, count, err := s.follows.Subscriptions(ctx, reader.ID, service.PageRequest{}, service.DefaultRecipesLimit)
	require.NoError(t, err)
	assert.EqualValues(t, 8, count)
	require.Len(t, first, service.DefaultPageSize)
	assert.Equal(t, authorIDs[0], first[0].ID)
	assert.Len(t, first[0].Recipes, 1)

	second, _, err := s.follows.Subscriptions(ctx, reader.ID, service.PageRequest{Page: 2}, 0)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Empty(t, second[0].Recipes)
	assert.EqualValues(t, 1, second[0].RecipesCount)
}

func TestFavoriteToggle(t *testing.T) {
	s := setup(t)
	user := testhelpers.CreateUser(t, s.db, "eater")
	author := testhelpers.CreateUser(t, s.db, "chef")
	recipe := testhelpers.CreateRecipe(t, s.db, author.ID, "Борщ", nil)

	_, err := s.favorites.Add(ctx, user.ID, 9999)
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.ErrorIs(t, s.favorites.Remove(ctx, user.ID, recipe.ID), service.ErrNotPresent)

	short, err := s.favorites.Add(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, recipe.ID, short.ID)
	assert.Equal(t, "Борщ", short.Name)

	_, err = s.favorites.Add(ctx, user.ID, recipe.ID)
	assert.ErrorIs(t, err, service.ErrAlreadyExists)

	rep, err := s.recipes.Get(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.True(t, rep.IsFavorited)
	assert.False(t, rep.IsInShoppingCart)

	require.NoError(t, s.favorites.Remove(ctx, user.ID, recipe.ID))
	assert.ErrorIs(t, s.favorites.Remove(ctx, user.ID, recipe.ID), service.ErrNotPresent)
}

func TestCartToggle(t *testing.T) {
	s := setup(t)
	user := testhelpers.CreateUser(t, s.db, "eater")
	recipe := testhelpers.CreateRecipe(t, s.db, user.ID, "Щи", nil)

	_, err := s.cart.Add(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	_, err = s.cart.Add(ctx, user.ID, recipe.ID)
	assert.ErrorIs(t, err, service.ErrAlreadyExists)

	rep, err := s.users.Get(ctx, 0, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, rep.RecipesInCart)

	require.NoError(t, s.cart.Remove(ctx, user.ID, recipe.ID))
	assert.ErrorIs(t, s.cart.Remove(ctx, user.ID, recipe.ID), service.ErrNotPresent)
}
