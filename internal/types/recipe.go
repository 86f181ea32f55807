package types

import (
	"github.com/google/uuid"
)

// UserResponse is the public representation of a user as seen by the viewer.
type UserResponse struct {
	ID            uint    `json:"id"`
	Email         string  `json:"email"`
	Username      string  `json:"username"`
	FirstName     string  `json:"first_name"`
	LastName      string  `json:"last_name"`
	Avatar        *string `json:"avatar"`
	IsSubscribed  bool    `json:"is_subscribed"`
	RecipesInCart int64   `json:"recipes_in_cart"`
}

type AvatarResponse struct {
	Avatar string `json:"avatar"`
}

// SubscriptionResponse is a followed author with a preview of their recipes.
type SubscriptionResponse struct {
	UserResponse
	Recipes      []RecipeShortResponse `json:"recipes"`
	RecipesCount int64                 `json:"recipes_count"`
}

type IngredientResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// RecipeIngredientResponse carries the ingredient's id, not the join row's.
type RecipeIngredientResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

type RecipeResponse struct {
	ID               uint                       `json:"id"`
	Author           UserResponse               `json:"author"`
	AuthorID         uint                       `json:"authorId"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	CookingTime      int                        `json:"cooking_time"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	ShortUUID        uuid.UUID                  `json:"short_uuid"`
}

// RecipeShortResponse is used by toggles and subscription previews.
type RecipeShortResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

type ShortLinkResponse struct {
	ShortLink string `json:"short_link"`
}

// ShoppingItem is one aggregated line of the shopping list.
type ShoppingItem struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	TotalAmount     int64  `json:"total_amount"`
}
