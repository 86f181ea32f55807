package testhelpers

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
)

// TestPassword is the plain-text password of every user made by CreateUser.
const TestPassword = "s3cret-pass"

var testPasswordHash = func() string {
	h, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(h)
}()

func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    "Test",
		LastName:     username,
		PasswordHash: testPasswordHash,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(ingredient).Error; err != nil {
		t.Fatalf("failed to create ingredient %s: %v", name, err)
	}
	return ingredient
}

// CreateRecipe inserts a recipe directly, bypassing validation and storage.
// amounts maps ingredient id to amount.
func CreateRecipe(t *testing.T, db *gorm.DB, authorID uint, name string, amounts map[uint]int) *models.Recipe {
	t.Helper()
	recipe := &models.Recipe{
		AuthorID:    authorID,
		Name:        name,
		Text:        "Cook " + name,
		Image:       "recipes/images/" + name + ".png",
		CookingTime: 10,
	}
	for id, amount := range amounts {
		recipe.Ingredients = append(recipe.Ingredients, models.RecipeIngredient{IngredientID: id, Amount: amount})
	}
	if err := db.Create(recipe).Error; err != nil {
		t.Fatalf("failed to create recipe %s: %v", name, err)
	}
	return recipe
}

// PNGDataURI returns a small valid image as a data URI.
func PNGDataURI(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	img := imaging.New(3, 3, color.NRGBA{R: 255, G: 128, A: 255})
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return fmt.Sprintf("data:image/png;base64,%s", base64.StdEncoding.EncodeToString(buf.Bytes()))
}
