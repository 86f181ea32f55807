package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/types"
)

// pairRow is a (user, recipe) membership row with a unique pair constraint.
type pairRow interface {
	models.Favorite | models.ShoppingCart
}

// collection implements add/remove for one membership table.
type collection[T pairRow] struct {
	db         *gorm.DB
	presenter  *Presenter
	newRow     func(userID, recipeID uint) T
	conflict   string
	notPresent string
}

// add inserts the pair. The existence check gives a clean error in the common
// case; the unique index settles concurrent inserts.
func (c *collection[T]) add(ctx context.Context, userID, recipeID uint) (*types.RecipeShortResponse, error) {
	recipe, err := loadRecipe(ctx, c.db, recipeID)
	if err != nil {
		return nil, err
	}

	db := c.db.WithContext(ctx)
	present, err := exists(db.Model(new(T)).Where("user_id = ? AND recipe_id = ?", userID, recipeID))
	if err != nil {
		return nil, err
	}
	if present {
		return nil, detail(ErrAlreadyExists, c.conflict)
	}

	row := c.newRow(userID, recipeID)
	if err := db.Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, detail(ErrAlreadyExists, c.conflict)
		}
		return nil, fmt.Errorf("failed to add recipe: %w", err)
	}

	out := c.presenter.RecipeShort(recipe)
	return &out, nil
}

func (c *collection[T]) remove(ctx context.Context, userID, recipeID uint) error {
	if _, err := loadRecipe(ctx, c.db, recipeID); err != nil {
		return err
	}

	res := c.db.WithContext(ctx).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(new(T))
	if res.Error != nil {
		return fmt.Errorf("failed to remove recipe: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return detail(ErrNotPresent, c.notPresent)
	}
	return nil
}

type FavoriteService struct {
	favorites *collection[models.Favorite]
}

func NewFavoriteService(db *gorm.DB, presenter *Presenter) *FavoriteService {
	return &FavoriteService{favorites: &collection[models.Favorite]{
		db:        db,
		presenter: presenter,
		newRow: func(userID, recipeID uint) models.Favorite {
			return models.Favorite{UserID: userID, RecipeID: recipeID}
		},
		conflict:   "Recipe is already in favorites.",
		notPresent: "Recipe is not in favorites.",
	}}
}

func (s *FavoriteService) Add(ctx context.Context, userID, recipeID uint) (*types.RecipeShortResponse, error) {
	return s.favorites.add(ctx, userID, recipeID)
}

func (s *FavoriteService) Remove(ctx context.Context, userID, recipeID uint) error {
	return s.favorites.remove(ctx, userID, recipeID)
}

type CartService struct {
	cart *collection[models.ShoppingCart]
}

func NewCartService(db *gorm.DB, presenter *Presenter) *CartService {
	return &CartService{cart: &collection[models.ShoppingCart]{
		db:        db,
		presenter: presenter,
		newRow: func(userID, recipeID uint) models.ShoppingCart {
			return models.ShoppingCart{UserID: userID, RecipeID: recipeID}
		},
		conflict:   "Recipe is already in the shopping cart.",
		notPresent: "Recipe is not in the shopping cart.",
	}}
}

func (s *CartService) Add(ctx context.Context, userID, recipeID uint) (*types.RecipeShortResponse, error) {
	return s.cart.add(ctx, userID, recipeID)
}

func (s *CartService) Remove(ctx context.Context, userID, recipeID uint) error {
	return s.cart.remove(ctx, userID, recipeID)
}
