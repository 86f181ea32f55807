package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/types"
)

type IngredientService struct {
	db        *gorm.DB
	presenter *Presenter
}

func NewIngredientService(db *gorm.DB, presenter *Presenter) *IngredientService {
	return &IngredientService{db: db, presenter: presenter}
}

// Search lists ingredients whose name starts with prefix, case-insensitively.
// An empty prefix lists the whole catalogue.
func (s *IngredientService) Search(ctx context.Context, prefix string) ([]types.IngredientResponse, error) {
	q := s.db.WithContext(ctx).Model(&models.Ingredient{}).Order("id")
	if prefix != "" {
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\'", escapeLike(strings.ToLower(prefix))+"%")
	}

	var ingredients []models.Ingredient
	if err := q.Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("failed to search ingredients: %w", err)
	}

	out := make([]types.IngredientResponse, len(ingredients))
	for i := range ingredients {
		out[i] = s.presenter.Ingredient(&ingredients[i])
	}
	return out, nil
}

func (s *IngredientService) Get(ctx context.Context, id uint) (*types.IngredientResponse, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Ingredient")
		}
		return nil, err
	}
	out := s.presenter.Ingredient(&ingredient)
	return &out, nil
}

// BulkCreate inserts the catalogue in batches and returns how many rows were written.
func (s *IngredientService) BulkCreate(ctx context.Context, items []models.Ingredient, batchSize int) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).CreateInBatches(items, batchSize)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to insert ingredients: %w", res.Error)
	}
	return res.RowsAffected, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
