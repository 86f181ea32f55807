package validation

import (
	"fmt"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/types"
)

const (
	msgRequired        = "This field is required."
	msgNoIngredients   = "Recipe must contain at least one ingredient."
	msgDuplicateIngred = "Ingredients must not repeat."
)

// User runs the registration pipeline. Uniqueness of email and username is
// checked by the service afterwards.
func User(req *types.RegisterRequest) Errors {
	errs := Errors{}
	Field(errs, "email", req.Email, Required, MaxLen(254), Email)
	Field(errs, "username", req.Username, Required, MaxLen(150), Username)
	Field(errs, "first_name", req.FirstName, Required, MaxLen(150))
	Field(errs, "last_name", req.LastName, Required, MaxLen(150))
	Field(errs, "password", req.Password, Required)
	return errs
}

func SetPassword(req *types.SetPasswordRequest) Errors {
	errs := Errors{}
	Field(errs, "current_password", req.CurrentPassword, Required)
	Field(errs, "new_password", req.NewPassword, Required)
	return errs
}

// Recipe runs the recipe pipeline. With partial set, omitted fields are skipped
// instead of reported as missing.
func Recipe(req *types.RecipeRequest, partial bool) Errors {
	errs := Errors{}

	optional(errs, "name", req.Name, partial, Required, MaxLen(200))
	optional(errs, "text", req.Text, partial, Required)
	optional(errs, "image", req.Image, partial, Required)
	optional(errs, "cooking_time", req.CookingTime, partial, Between(models.MinValue, models.MaxValue))

	switch {
	case req.Ingredients != nil:
		for field, msgs := range Ingredients(req.Ingredients) {
			errs[field] = append(errs[field], msgs...)
		}
	case !partial:
		errs.Add("ingredients", msgRequired)
	}

	return errs
}

// Ingredients checks the list shape: non-empty, no repeated ids, amounts in range.
// Whether each id exists is checked against the database by the service.
func Ingredients(items []types.IngredientAmount) Errors {
	errs := Errors{}
	if len(items) == 0 {
		errs.Add("ingredients", msgNoIngredients)
		return errs
	}

	amount := Between(models.MinValue, models.MaxValue)
	seen := make(map[uint]struct{}, len(items))
	for _, item := range items {
		if _, dup := seen[item.ID]; dup {
			errs.Add("ingredients", msgDuplicateIngred)
			continue
		}
		seen[item.ID] = struct{}{}

		if msg := amount(item.Amount); msg != "" {
			errs.Add("ingredients", fmt.Sprintf("Ingredient %d amount: %s", item.ID, msg))
		}
	}
	return errs
}

func optional[T any](errs Errors, name string, value *T, partial bool, rules ...Rule[T]) {
	if value == nil {
		if !partial {
			errs.Add(name, msgRequired)
		}
		return
	}
	Field(errs, name, *value, rules...)
}
