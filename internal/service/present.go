package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/storage"
	"github.com/foodgram/backend/internal/types"
)

type cartCount struct {
	UserID uint
	Total  int64
}

// Presenter turns models into API representations. Per-viewer flags are
// loaded in bulk for the whole slice. A viewerID of 0 is an anonymous viewer.
type Presenter struct {
	db    *gorm.DB
	store storage.Store
}

func NewPresenter(db *gorm.DB, store storage.Store) *Presenter {
	return &Presenter{db: db, store: store}
}

func (p *Presenter) Users(ctx context.Context, viewerID uint, users []models.User) ([]types.UserResponse, error) {
	out := make([]types.UserResponse, 0, len(users))
	if len(users) == 0 {
		return out, nil
	}

	ids := make([]uint, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}

	subscribed := map[uint]bool{}
	if viewerID != 0 {
		var following []uint
		err := p.db.WithContext(ctx).Model(&models.Follow{}).
			Where("follower_id = ? AND following_id IN ?", viewerID, ids).
			Pluck("following_id", &following).Error
		if err != nil {
			return nil, fmt.Errorf("failed to load subscriptions: %w", err)
		}
		for _, id := range following {
			subscribed[id] = true
		}
	}

	var counts []cartCount
	err := p.db.WithContext(ctx).Model(&models.ShoppingCart{}).
		Select("user_id, COUNT(*) AS total").
		Where("user_id IN ?", ids).
		Group("user_id").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count cart entries: %w", err)
	}
	inCart := make(map[uint]int64, len(counts))
	for _, c := range counts {
		inCart[c.UserID] = c.Total
	}

	for i := range users {
		u := &users[i]
		out = append(out, types.UserResponse{
			ID:            u.ID,
			Email:         u.Email,
			Username:      u.Username,
			FirstName:     u.FirstName,
			LastName:      u.LastName,
			Avatar:        p.avatarURL(u),
			IsSubscribed:  subscribed[u.ID],
			RecipesInCart: inCart[u.ID],
		})
	}
	return out, nil
}

func (p *Presenter) User(ctx context.Context, viewerID uint, u *models.User) (*types.UserResponse, error) {
	out, err := p.Users(ctx, viewerID, []models.User{*u})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (p *Presenter) avatarURL(u *models.User) *string {
	if u.Avatar == nil || *u.Avatar == "" {
		return nil
	}
	url := p.store.URL(*u.Avatar)
	return &url
}

// Recipes expects Author and Ingredients.Ingredient to be preloaded.
func (p *Presenter) Recipes(ctx context.Context, viewerID uint, recipes []models.Recipe) ([]types.RecipeResponse, error) {
	out := make([]types.RecipeResponse, 0, len(recipes))
	if len(recipes) == 0 {
		return out, nil
	}

	ids := make([]uint, len(recipes))
	var authors []models.User
	seen := map[uint]bool{}
	for i := range recipes {
		ids[i] = recipes[i].ID
		if !seen[recipes[i].AuthorID] {
			seen[recipes[i].AuthorID] = true
			authors = append(authors, recipes[i].Author)
		}
	}

	favorited, err := p.pairSet(ctx, &models.Favorite{}, viewerID, ids)
	if err != nil {
		return nil, err
	}
	inCart, err := p.pairSet(ctx, &models.ShoppingCart{}, viewerID, ids)
	if err != nil {
		return nil, err
	}

	authorReps, err := p.Users(ctx, viewerID, authors)
	if err != nil {
		return nil, err
	}
	byAuthor := make(map[uint]types.UserResponse, len(authorReps))
	for _, a := range authorReps {
		byAuthor[a.ID] = a
	}

	for i := range recipes {
		r := &recipes[i]
		ingredients := make([]types.RecipeIngredientResponse, 0, len(r.Ingredients))
		for _, ri := range r.Ingredients {
			ingredients = append(ingredients, types.RecipeIngredientResponse{
				ID:              ri.Ingredient.ID,
				Name:            ri.Ingredient.Name,
				MeasurementUnit: ri.Ingredient.MeasurementUnit,
				Amount:          ri.Amount,
			})
		}
		out = append(out, types.RecipeResponse{
			ID:               r.ID,
			Author:           byAuthor[r.AuthorID],
			AuthorID:         r.AuthorID,
			Name:             r.Name,
			Image:            p.store.URL(r.Image),
			Text:             r.Text,
			Ingredients:      ingredients,
			CookingTime:      r.CookingTime,
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			ShortUUID:        r.ShortUUID,
		})
	}
	return out, nil
}

func (p *Presenter) Recipe(ctx context.Context, viewerID uint, r *models.Recipe) (*types.RecipeResponse, error) {
	out, err := p.Recipes(ctx, viewerID, []models.Recipe{*r})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (p *Presenter) RecipeShort(r *models.Recipe) types.RecipeShortResponse {
	return types.RecipeShortResponse{
		ID:          r.ID,
		Name:        r.Name,
		Image:       p.store.URL(r.Image),
		CookingTime: r.CookingTime,
	}
}

func (p *Presenter) Ingredient(i *models.Ingredient) types.IngredientResponse {
	return types.IngredientResponse{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

// pairSet returns which of recipeIDs the viewer has in the given pair table.
func (p *Presenter) pairSet(ctx context.Context, model any, viewerID uint, recipeIDs []uint) (map[uint]bool, error) {
	set := map[uint]bool{}
	if viewerID == 0 {
		return set, nil
	}
	var found []uint
	err := p.db.WithContext(ctx).Model(model).
		Where("user_id = ? AND recipe_id IN ?", viewerID, recipeIDs).
		Pluck("recipe_id", &found).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load viewer flags: %w", err)
	}
	for _, id := range found {
		set[id] = true
	}
	return set, nil
}

// withRecipeRelations preloads what Presenter.Recipes needs.
func withRecipeRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Ingredients", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("recipe_ingredients.id")
		}).
		Preload("Ingredients.Ingredient")
}
