package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/logging"
	"github.com/foodgram/backend/internal/metrics"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/storage"
	"github.com/foodgram/backend/internal/types"
	"github.com/foodgram/backend/internal/validation"
)

const (
	recipeImageDir  = "recipes/images"
	msgDuplicateRcp = "You already have a recipe with this name."
	msgBadImage     = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
)

// RecipeFilter narrows a recipe listing. Favorited and InCart only apply to
// an authenticated viewer.
type RecipeFilter struct {
	AuthorID  uint
	Favorited bool
	InCart    bool
	Search    string
}

type RecipeService struct {
	db        *gorm.DB
	store     storage.Store
	presenter *Presenter
	baseURL   string
}

func NewRecipeService(db *gorm.DB, store storage.Store, presenter *Presenter, baseURL string) *RecipeService {
	return &RecipeService{
		db:        db,
		store:     store,
		presenter: presenter,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
	}
}

// List returns one page of recipes, newest first.
func (s *RecipeService) List(ctx context.Context, viewerID uint, f RecipeFilter, page PageRequest) ([]types.RecipeResponse, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Recipe{})
	if f.AuthorID != 0 {
		q = q.Where("recipes.author_id = ?", f.AuthorID)
	}
	if viewerID != 0 && f.Favorited {
		q = q.Where("EXISTS (SELECT 1 FROM favorites WHERE favorites.recipe_id = recipes.id AND favorites.user_id = ?)", viewerID)
	}
	if viewerID != 0 && f.InCart {
		q = q.Where("EXISTS (SELECT 1 FROM shopping_carts WHERE shopping_carts.recipe_id = recipes.id AND shopping_carts.user_id = ?)", viewerID)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + escapeLike(strings.ToLower(term)) + "%"
		q = q.Where(
			"LOWER(recipes.name) LIKE ? ESCAPE '\\' OR recipes.author_id IN (SELECT id FROM users WHERE LOWER(username) LIKE ? ESCAPE '\\')",
			like, like,
		)
	}
	q = q.Session(&gorm.Session{})

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count recipes: %w", err)
	}

	var recipes []models.Recipe
	err := withRecipeRelations(q).
		Order("recipes.id DESC").
		Offset(page.Offset()).
		Limit(page.Size()).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list recipes: %w", err)
	}

	out, err := s.presenter.Recipes(ctx, viewerID, recipes)
	return out, count, err
}

func (s *RecipeService) Get(ctx context.Context, viewerID, id uint) (*types.RecipeResponse, error) {
	var recipe models.Recipe
	if err := withRecipeRelations(s.db.WithContext(ctx)).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Recipe")
		}
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	return s.presenter.Recipe(ctx, viewerID, &recipe)
}

func (s *RecipeService) Create(ctx context.Context, authorID uint, req *types.RecipeRequest) (*types.RecipeResponse, error) {
	errs := validation.Recipe(req, false)
	if err := s.checkIngredients(ctx, req.Ingredients, errs); err != nil {
		return nil, err
	}
	if _, bad := errs["name"]; !bad {
		if err := s.checkNameFree(ctx, authorID, *req.Name, 0, errs); err != nil {
			return nil, err
		}
	}
	img := decodeImage(req.Image, errs)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	key, err := s.store.Save(ctx, recipeImageDir, img)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        *req.Name,
		Text:        *req.Text,
		Image:       key,
		CookingTime: *req.CookingTime,
		Ingredients: ingredientRows(0, req.Ingredients),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&recipe).Error
	})
	if err != nil {
		s.discard(ctx, key)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, validation.Single("name", msgDuplicateRcp)
		}
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}

	metrics.RecipesCreated.Inc()
	logging.Info().Uint("recipe_id", recipe.ID).Uint("author_id", authorID).Msg("recipe created")
	return s.Get(ctx, authorID, recipe.ID)
}

// Update changes the author's recipe. With partial set, omitted fields keep
// their values; otherwise every field is required. A present ingredient list
// replaces the old rows in the same transaction as the field update.
func (s *RecipeService) Update(ctx context.Context, userID, id uint, req *types.RecipeRequest, partial bool) (*types.RecipeResponse, error) {
	recipe, err := s.ownRecipe(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	errs := validation.Recipe(req, partial)
	if req.Ingredients != nil {
		if err := s.checkIngredients(ctx, req.Ingredients, errs); err != nil {
			return nil, err
		}
	}
	if _, bad := errs["name"]; !bad && req.Name != nil && *req.Name != recipe.Name {
		if err := s.checkNameFree(ctx, userID, *req.Name, recipe.ID, errs); err != nil {
			return nil, err
		}
	}
	var img *storage.Image
	if req.Image != nil {
		img = decodeImage(req.Image, errs)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Text != nil {
		updates["text"] = *req.Text
	}
	if req.CookingTime != nil {
		updates["cooking_time"] = *req.CookingTime
	}
	newKey := ""
	if img != nil {
		if newKey, err = s.store.Save(ctx, recipeImageDir, img); err != nil {
			return nil, err
		}
		updates["image"] = newKey
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(recipe).Updates(updates).Error; err != nil {
				return err
			}
		}
		if req.Ingredients != nil {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
				return err
			}
			rows := ingredientRows(recipe.ID, req.Ingredients)
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if newKey != "" {
			s.discard(ctx, newKey)
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, validation.Single("name", msgDuplicateRcp)
		}
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}

	if newKey != "" {
		s.discard(ctx, recipe.Image)
	}
	logging.Debug().Uint("recipe_id", recipe.ID).Msg("recipe updated")
	return s.Get(ctx, userID, recipe.ID)
}

// Delete removes the author's recipe. Ingredient rows, favorites and cart
// entries go with it through ON DELETE CASCADE.
func (s *RecipeService) Delete(ctx context.Context, userID, id uint) error {
	recipe, err := s.ownRecipe(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.Recipe{}, recipe.ID).Error; err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	s.discard(ctx, recipe.Image)
	logging.Info().Uint("recipe_id", recipe.ID).Msg("recipe deleted")
	return nil
}

// ShortLink returns the absolute short URL for a recipe.
func (s *RecipeService) ShortLink(ctx context.Context, id uint) (string, error) {
	recipe, err := loadRecipe(ctx, s.db, id)
	if err != nil {
		return "", err
	}
	return s.baseURL + ShortLinkPath(recipe.ShortUUID), nil
}

// Resolve maps a short link slug back to the recipe id. Malformed and unknown
// slugs are both not found.
func (s *RecipeService) Resolve(ctx context.Context, slug string) (uint, error) {
	id, err := uuid.Parse(slug)
	if err != nil {
		metrics.ShortLinkResolutions.WithLabelValues("not_found").Inc()
		return 0, notFound("Recipe")
	}

	var recipe models.Recipe
	err = s.db.WithContext(ctx).Select("id").Where("short_uuid = ?", id).First(&recipe).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.ShortLinkResolutions.WithLabelValues("not_found").Inc()
			return 0, notFound("Recipe")
		}
		return 0, fmt.Errorf("failed to resolve short link: %w", err)
	}

	metrics.ShortLinkResolutions.WithLabelValues("found").Inc()
	return recipe.ID, nil
}

// ShortLinkPath is the router path a short link resolves through.
func ShortLinkPath(id uuid.UUID) string {
	return "/s/" + id.String() + "/"
}

func (s *RecipeService) ownRecipe(ctx context.Context, userID, id uint) (*models.Recipe, error) {
	recipe, err := loadRecipe(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if recipe.AuthorID != userID {
		return nil, ErrForbidden
	}
	return recipe, nil
}

// checkIngredients reports every id in items that has no catalogue row.
// It is skipped when the list already failed its shape checks.
func (s *RecipeService) checkIngredients(ctx context.Context, items []types.IngredientAmount, errs validation.Errors) error {
	if len(items) == 0 {
		return nil
	}
	if _, bad := errs["ingredients"]; bad {
		return nil
	}

	ids := make([]uint, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	var found []uint
	if err := s.db.WithContext(ctx).Model(&models.Ingredient{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return fmt.Errorf("failed to check ingredients: %w", err)
	}

	known := make(map[uint]bool, len(found))
	for _, id := range found {
		known[id] = true
	}
	for _, id := range ids {
		if !known[id] {
			errs.Add("ingredients", fmt.Sprintf("Ingredient with id %d does not exist.", id))
		}
	}
	return nil
}

func (s *RecipeService) checkNameFree(ctx context.Context, authorID uint, name string, exceptID uint, errs validation.Errors) error {
	q := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("author_id = ? AND name = ?", authorID, name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	taken, err := exists(q)
	if err != nil {
		return fmt.Errorf("failed to check recipe name: %w", err)
	}
	if taken {
		errs.Add("name", msgDuplicateRcp)
	}
	return nil
}

func (s *RecipeService) discard(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("failed to delete stored image")
	}
}

// decodeImage decodes the image field unless it already failed validation.
func decodeImage(data *string, errs validation.Errors) *storage.Image {
	if _, bad := errs["image"]; bad || data == nil {
		return nil
	}
	img, err := storage.DecodeDataURI(*data)
	if err != nil {
		errs.Add("image", msgBadImage)
		return nil
	}
	return img
}

func ingredientRows(recipeID uint, items []types.IngredientAmount) []models.RecipeIngredient {
	rows := make([]models.RecipeIngredient, len(items))
	for i, item := range items {
		rows[i] = models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: item.ID,
			Amount:       item.Amount,
		}
	}
	return rows
}

func loadRecipe(ctx context.Context, db *gorm.DB, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := db.WithContext(ctx).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Recipe")
		}
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	return &recipe, nil
}
