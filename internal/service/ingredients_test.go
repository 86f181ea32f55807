package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/service"
)

func TestIngredientSearch(t *testing.T) {
	s := setup(t)
	n, err := s.ingredients.BulkCreate(ctx, []models.Ingredient{
		{Name: "Apple", MeasurementUnit: "pcs"},
		{Name: "apricot", MeasurementUnit: "g"},
		{Name: "banana", MeasurementUnit: "pcs"},
		{Name: "50%_cream", MeasurementUnit: "ml"},
	}, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)

	all, err := s.ingredients.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	ap, err := s.ingredients.Search(ctx, "AP")
	require.NoError(t, err)
	require.Len(t, ap, 2)
	assert.Equal(t, "Apple", ap[0].Name)
	assert.Equal(t, "apricot", ap[1].Name)

	none, err := s.ingredients.Search(ctx, "nana")
	require.NoError(t, err)
	assert.Empty(t, none, "match is a prefix match")

	literal, err := s.ingredients.Search(ctx, "50%_")
	require.NoError(t, err)
	assert.Len(t, literal, 1)

	wildcard, err := s.ingredients.Search(ctx, "%")
	require.NoError(t, err)
	assert.Empty(t, wildcard)

	got, err := s.ingredients.Get(ctx, ap[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "pcs", got.MeasurementUnit)

	_, err = s.ingredients.Get(ctx, 999)
	assert.ErrorIs(t, err, service.ErrNotFound)
}
