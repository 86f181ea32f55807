package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/testhelpers"
	"github.com/foodgram/backend/internal/types"
	"github.com/foodgram/backend/internal/validation"
)

func recipeRequest(t *testing.T, name string, items ...types.IngredientAmount) *types.RecipeRequest {
	return &types.RecipeRequest{
		Name:        strPtr(name),
		Text:        strPtr("Смешать и подать"),
		Image:       strPtr(testhelpers.PNGDataURI(t)),
		CookingTime: intPtr(15),
		Ingredients: items,
	}
}

func TestCreateRecipe(t *testing.T) {
	s := setup(t)
	author := testhelpers.CreateUser(t, s.db, "chef")
	sugar := testhelpers.CreateIngredient(t, s.db, "сахар", "г")
	milk := testhelpers.CreateIngredient(t, s.db, "молоко", "мл")

	rep, err := s.recipes.Create(ctx, author.ID, recipeRequest(t, "Каша",
		types.IngredientAmount{ID: milk.ID, Amount: 300},
		types.IngredientAmount{ID: sugar.ID, Amount: 20},
	))
	require.NoError(t, err)

	assert.Equal(t, "Каша", rep.Name)
	assert.Equal(t, author.ID, rep.AuthorID)
	assert.Equal(t, "chef", rep.Author.Username)
	assert.NotEqual(t, uuid.Nil, rep.ShortUUID)
	assert.Regexp(t, `^http://testserver/media/recipes/images/.+\.png$`, rep.Image)
	require.Len(t, rep.Ingredients, 2)
	assert.Equal(t, types.RecipeIngredientResponse{ID: milk.ID, Name: "молоко", MeasurementUnit: "мл", Amount: 300}, rep.Ingredients[0])
	assert.False(t, rep.IsFavorited)

	t.Run("same author same name conflicts", func(t *testing.T) {
		_, err := s.recipes.Create(ctx, author.ID, recipeRequest(t, "Каша", types.IngredientAmount{ID: sugar.ID, Amount: 1}))
		errs, ok := validation.AsErrors(err)
		require.True(t, ok)
		assert.Contains(t, errs, "name")
	})

	t.Run("other author may reuse the name", func(t *testing.T) {
		other := testhelpers.CreateUser(t, s.db, "cook")
		_, err := s.recipes.Create(ctx, other.ID, recipeRequest(t, "Каша", types.IngredientAmount{ID: sugar.ID, Amount: 1}))
		assert.NoError(t, err)
	})

	t.Run("unknown ingredient is named", func(t *testing.T) {
		_, err := s.recipes.Create(ctx, author.ID, recipeRequest(t, "Чай", types.IngredientAmount{ID: 424242, Amount: 1}))
		errs, ok := validation.AsErrors(err)
		require.True(t, ok)
		require.Len(t, errs["ingredients"], 1)
		assert.Contains(t, errs["ingredients"][0], "424242")
	})

	t.Run("repeated ingredient", func(t *testing.T) {
		_, err := s.recipes.Create(ctx, author.ID, recipeRequest(t, "Чай",
			types.IngredientAmount{ID: sugar.ID, Amount: 1},
			types.IngredientAmount{ID: sugar.ID, Amount: 2},
		))
		errs, ok := validation.AsErrors(err)
		require.True(t, ok)
		assert.Contains(t, errs, "ingredients")
	})

	t.Run("broken image", func(t *testing.T) {
		req := recipeRequest(t, "Чай", types.IngredientAmount{ID: sugar.ID, Amount: 1})
		req.Image = strPtr("data:image/png;base64,aGVsbG8=")
		_, err := s.recipes.Create(ctx, author.ID, req)
		errs, ok := validation.AsErrors(err)
		require.True(t, ok)
		assert.Contains(t, errs, "image")
	})

	t.Run("nothing written on validation failure", func(t *testing.T) {
		var count int64
		require.NoError(t, s.db.Model(&models.Recipe{}).Where("name = ?", "Чай").Count(&count).Error)
		assert.Zero(t, count)
	})
}

func TestUpdateRecipe(t *testing.T) {
	s := setup(t)
	author := testhelpers.CreateUser(t, s.db, "chef")
	stranger := testhelpers.CreateUser(t, s.db, "stranger")
	egg := testhelpers.CreateIngredient(t, s.db, "яйцо", "шт")
	salt := testhelpers.CreateIngredient(t, s.db, "соль", "г")
	recipe := testhelpers.CreateRecipe(t, s.db, author.ID, "Омлет", map[uint]int{egg.ID: 3})
	testhelpers.CreateRecipe(t, s.db, author.ID, "Яичница", map[uint]int{egg.ID: 2})

	_, err := s.recipes.Update(ctx, stranger.ID, recipe.ID, &types.RecipeRequest{Name: strPtr("Мой омлет")}, true)
	assert.ErrorIs(t, err, service.ErrForbidden)

	_, err = s.recipes.Update(ctx, author.ID, 9999, &types.RecipeRequest{}, true)
	assert.ErrorIs(t, err, service.ErrNotFound)

	t.Run("partial keeps omitted fields", func(t *testing.T) {
		rep, err := s.recipes.Update(ctx, author.ID, recipe.ID, &types.RecipeRequest{CookingTime: intPtr(7)}, true)
		require.NoError(t, err)
		assert.Equal(t, 7, rep.CookingTime)
		assert.Equal(t, "Омлет", rep.Name)
		assert.Len(t, rep.Ingredients, 1)
		assert.Equal(t, recipe.ShortUUID, rep.ShortUUID)
	})

	t.Run("renaming onto another own recipe conflicts", func(t *testing.T) {
		_, err := s.recipes.Update(ctx, author.ID, recipe.ID, &types.RecipeRequest{Name: strPtr("Яичница")}, true)
		errs, ok := validation.AsErrors(err)
		require.True(t, ok)
		assert.Contains(t, errs, "name")
	})

	t.Run("keeping the same name is fine", func(t *testing.T) {
		_, err := s.recipes.Update(ctx, author.ID, recipe.ID, &types.RecipeRequest{Name: strPtr("Омлет")}, true)
		assert.NoError(t, err)
	})

	t.Run("ingredients are replaced", func(t *testing.T) {
		rep, err := s.recipes.Update(ctx, author.ID, recipe.ID, &types.RecipeRequest{
			Ingredients: []types.IngredientAmount{{ID: egg.ID, Amount: 4}, {ID: salt.ID, Amount: 2}},
		}, true)
		require.NoError(t, err)
		require.Len(t, rep.Ingredients, 2)
		assert.Equal(t, 4, rep.Ingredients[0].Amount)

		var rows int64
		require.NoError(t, s.db.Model(&models.RecipeIngredient{}).Where("recipe_id = ?", recipe.ID).Count(&rows).Error)
		assert.EqualValues(t, 2, rows)
	})

	t.Run("invalid ingredient list leaves rows untouched", func(t *testing.T) {
		_, err := s.recipes.Update(ctx, author.ID, recipe.ID, &types.RecipeRequest{Ingredients: []types.IngredientAmount{}}, true)
		_, ok := validation.AsErrors(err)
		require.True(t, ok)

		var rows int64
		require.NoError(t, s.db.Model(&models.RecipeIngredient{}).Where("recipe_id = ?", recipe.ID).Count(&rows).Error)
		assert.EqualValues(t, 2, rows)
	})

	t.Run("full update requires every field", func(t *testing.T) {
		_, err := s.recipes.Update(ctx, author.ID, recipe.ID, &types.RecipeRequest{Name: strPtr("Омлет")}, false)
		errs, ok := validation.AsErrors(err)
		require.True(t, ok)
		assert.Contains(t, errs, "text")
		assert.Contains(t, errs, "image")
	})
}

func TestDeleteRecipeCascades(t *testing.T) {
	s := setup(t)
	author := testhelpers.CreateUser(t, s.db, "chef")
	fan := testhelpers.CreateUser(t, s.db, "fan")
	flour := testhelpers.CreateIngredient(t, s.db, "мука", "г")
	recipe := testhelpers.CreateRecipe(t, s.db, author.ID, "Блины", map[uint]int{flour.ID: 200})

	_, err := s.favorites.Add(ctx, fan.ID, recipe.ID)
	require.NoError(t, err)
	_, err = s.cart.Add(ctx, fan.ID, recipe.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, s.recipes.Delete(ctx, fan.ID, recipe.ID), service.ErrForbidden)
	require.NoError(t, s.recipes.Delete(ctx, author.ID, recipe.ID))

	for _, model := range []any{&models.RecipeIngredient{}, &models.Favorite{}, &models.ShoppingCart{}} {
		var count int64
		require.NoError(t, s.db.Model(model).Where("recipe_id = ?", recipe.ID).Count(&count).Error)
		assert.Zero(t, count, "%T rows should be cascaded", model)
	}

	_, err = s.recipes.Get(ctx, 0, recipe.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestListRecipes(t *testing.T) {
	s := setup(t)
	anna := testhelpers.CreateUser(t, s.db, "anna")
	boris := testhelpers.CreateUser(t, s.db, "boris")
	salt := testhelpers.CreateIngredient(t, s.db, "соль", "г")

	soup := testhelpers.CreateRecipe(t, s.db, anna.ID, "Soup", map[uint]int{salt.ID: 1})
	salad := testhelpers.CreateRecipe(t, s.db, anna.ID, "Salad", map[uint]int{salt.ID: 2})
	testhelpers.CreateRecipe(t, s.db, boris.ID, "Stew", map[uint]int{salt.ID: 3})

	_, err := s.favorites.Add(ctx, boris.ID, soup.ID)
	require.NoError(t, err)
	_, err = s.cart.Add(ctx, boris.ID, salad.ID)
	require.NoError(t, err)

	names := func(reps []types.RecipeResponse) []string {
		out := make([]string, len(reps))
		for i, r := range reps {
			out[i] = r.Name
		}
		return out
	}

	all, count, err := s.recipes.List(ctx, 0, service.RecipeFilter{}, service.PageRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
	assert.Equal(t, []string{"Stew", "Salad", "Soup"}, names(all), "newest first")

	byAuthor, _, err := s.recipes.List(ctx, 0, service.RecipeFilter{AuthorID: anna.ID}, service.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Salad", "Soup"}, names(byAuthor))

	favs, _, err := s.recipes.List(ctx, boris.ID, service.RecipeFilter{Favorited: true}, service.PageRequest{})
	require.NoError(t, err)
	require.Equal(t, []string{"Soup"}, names(favs))
	assert.True(t, favs[0].IsFavorited)

	cart, _, err := s.recipes.List(ctx, boris.ID, service.RecipeFilter{InCart: true}, service.PageRequest{})
	require.NoError(t, err)
	require.Equal(t, []string{"Salad"}, names(cart))
	assert.True(t, cart[0].IsInShoppingCart)

	anonFavs, _, err := s.recipes.List(ctx, 0, service.RecipeFilter{Favorited: true}, service.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, anonFavs, 3, "anonymous viewers ignore is_favorited")

	byName, _, err := s.recipes.List(ctx, 0, service.RecipeFilter{Search: "sou"}, service.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Soup"}, names(byName))

	byUsername, _, err := s.recipes.List(ctx, 0, service.RecipeFilter{Search: "BOR"}, service.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Stew"}, names(byUsername))

	page2, count, err := s.recipes.List(ctx, 0, service.RecipeFilter{}, service.PageRequest{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
	assert.Equal(t, []string{"Soup"}, names(page2))

}

func TestShortLink(t *testing.T) {
	s := setup(t)
	author := testhelpers.CreateUser(t, s.db, "chef")
	recipe := testhelpers.CreateRecipe(t, s.db, author.ID, "Пирог", nil)

	link, err := s.recipes.ShortLink(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "http://testserver/s/"+recipe.ShortUUID.String()+"/", link)

	id, err := s.recipes.Resolve(ctx, recipe.ShortUUID.String())
	require.NoError(t, err)
	assert.Equal(t, recipe.ID, id)

	_, err = s.recipes.Resolve(ctx, uuid.NewString())
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = s.recipes.Resolve(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = s.recipes.ShortLink(ctx, 9999)
	assert.ErrorIs(t, err, service.ErrNotFound)
}
