package testhelpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram/backend/internal/models"
)

func TestNewSQLiteDBIsIsolated(t *testing.T) {
	a := NewSQLiteDB(t)
	b := NewSQLiteDB(t)

	CreateUser(t, a, "alice")

	var count int64
	require.NoError(t, b.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestNewSQLiteDBEnforcesConstraints(t *testing.T) {
	db := NewSQLiteDB(t)
	user := CreateUser(t, db, "bob")

	err := db.Create(&models.Follow{FollowerID: user.ID, FollowingID: user.ID}).Error
	assert.Error(t, err, "self-follow must violate the check constraint")

	err = db.Create(&models.Favorite{UserID: user.ID, RecipeID: 9999}).Error
	assert.Error(t, err, "dangling recipe id must violate the foreign key")
}

func TestCreateRecipeFixture(t *testing.T) {
	db := NewSQLiteDB(t)
	user := CreateUser(t, db, "carol")
	sugar := CreateIngredient(t, db, "сахар", "г")

	recipe := CreateRecipe(t, db, user.ID, "Компот", map[uint]int{sugar.ID: 50})
	assert.NotZero(t, recipe.ID)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", recipe.ShortUUID.String())

	var rows int64
	require.NoError(t, db.Model(&models.RecipeIngredient{}).Where("recipe_id = ?", recipe.ID).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)
}

func TestPNGDataURI(t *testing.T) {
	uri := PNGDataURI(t)
	assert.Contains(t, uri, "data:image/png;base64,")
}
