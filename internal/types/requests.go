package types

// RegisterRequest represents the request body for creating a user
type RegisterRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

type AvatarRequest struct {
	Avatar string `json:"avatar"`
}

// IngredientAmount is one entry of a recipe's ingredient list on input.
type IngredientAmount struct {
	ID     uint `json:"id"`
	Amount int  `json:"amount"`
}

// RecipeRequest is shared by create and update. A nil field was omitted from
// the body; update leaves such fields unchanged.
type RecipeRequest struct {
	Name        *string            `json:"name"`
	Text        *string            `json:"text"`
	Image       *string            `json:"image"`
	CookingTime *int               `json:"cooking_time"`
	Ingredients []IngredientAmount `json:"ingredients"`
}
