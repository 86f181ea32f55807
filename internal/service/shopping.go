package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/metrics"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/types"
	"github.com/foodgram/backend/internal/validation"
)

const shoppingListTitle = "Список покупок"

// Export formats.
const (
	FormatText = "txt"
	FormatPDF  = "pdf"
)

var ErrPDFUnavailable = errors.New("PDF export is not configured")

// Export is a rendered shopping list ready to be served as a download.
type Export struct {
	Content     []byte
	ContentType string
	Filename    string
}

type ShoppingService struct {
	db        *gorm.DB
	presenter *Presenter
	fontPath  string
}

// NewShoppingService creates a ShoppingService. fontPath points at a UTF-8 TTF
// font for PDF export; leave it empty to disable PDF.
func NewShoppingService(db *gorm.DB, presenter *Presenter, fontPath string) *ShoppingService {
	return &ShoppingService{db: db, presenter: presenter, fontPath: fontPath}
}

// List sums ingredient amounts over every recipe in the user's cart, grouped
// by ingredient name and unit, ordered by name then unit.
func (s *ShoppingService) List(ctx context.Context, userID uint) ([]types.ShoppingItem, error) {
	items := []types.ShoppingItem{}
	err := s.db.WithContext(ctx).
		Table("shopping_carts").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS total_amount").
		Joins("JOIN recipe_ingredients ON recipe_ingredients.recipe_id = shopping_carts.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("shopping_carts.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name ASC, ingredients.measurement_unit ASC").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate shopping list: %w", err)
	}
	return items, nil
}

// Export renders the user's shopping list in the requested format.
func (s *ShoppingService) Export(ctx context.Context, userID uint, format string) (*Export, error) {
	if format == "" {
		format = FormatText
	}
	if format != FormatText && format != FormatPDF {
		return nil, validation.Single("format", fmt.Sprintf("Unsupported format %q. Use %q or %q.", format, FormatText, FormatPDF))
	}

	items, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	var out *Export
	switch format {
	case FormatPDF:
		content, err := s.RenderPDF(items)
		if errors.Is(err, ErrPDFUnavailable) {
			return nil, validation.Single("format", "PDF export is not available.")
		}
		if err != nil {
			return nil, err
		}
		out = &Export{Content: content, ContentType: "application/pdf", Filename: "shopping_list.pdf"}
	default:
		out = &Export{Content: RenderText(items), ContentType: "text/plain; charset=utf-8", Filename: "shopping_list.txt"}
	}

	metrics.ShoppingListDownloads.WithLabelValues(format).Inc()
	return out, nil
}

// RenderText renders the header line followed by one "name (unit) — total"
// line per item.
func RenderText(items []types.ShoppingItem) []byte {
	var b strings.Builder
	b.WriteString(shoppingListTitle + "\n")
	for _, item := range items {
		b.WriteString(formatItem(item) + "\n")
	}
	return []byte(b.String())
}

func (s *ShoppingService) RenderPDF(items []types.ShoppingItem) ([]byte, error) {
	if s.fontPath == "" {
		return nil, ErrPDFUnavailable
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddUTF8Font("body", "", s.fontPath)
	pdf.AddPage()

	pdf.SetFont("body", "", 16)
	pdf.Cell(0, 10, shoppingListTitle)
	pdf.Ln(12)

	pdf.SetFont("body", "", 12)
	for _, item := range items {
		pdf.CellFormat(0, 8, formatItem(item), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func formatItem(item types.ShoppingItem) string {
	return fmt.Sprintf("%s (%s) — %d", item.Name, item.MeasurementUnit, item.TotalAmount)
}

// CartIngredients lists the distinct catalogue ingredients used by the cart's recipes.
func (s *ShoppingService) CartIngredients(ctx context.Context, userID uint) ([]types.IngredientResponse, error) {
	var ingredients []models.Ingredient
	err := s.db.WithContext(ctx).
		Where(`id IN (SELECT recipe_ingredients.ingredient_id FROM recipe_ingredients
			JOIN shopping_carts ON shopping_carts.recipe_id = recipe_ingredients.recipe_id
			WHERE shopping_carts.user_id = ?)`, userID).
		Order("id").
		Find(&ingredients).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load cart ingredients: %w", err)
	}

	out := make([]types.IngredientResponse, len(ingredients))
	for i := range ingredients {
		out[i] = s.presenter.Ingredient(&ingredients[i])
	}
	return out, nil
}

// CartRecipeIngredients lists every ingredient row of every recipe in the
// cart, without aggregation.
func (s *ShoppingService) CartRecipeIngredients(ctx context.Context, userID uint) ([]types.RecipeIngredientResponse, error) {
	var rows []models.RecipeIngredient
	err := s.db.WithContext(ctx).
		Preload("Ingredient").
		Joins("JOIN shopping_carts ON shopping_carts.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_carts.user_id = ?", userID).
		Order("recipe_ingredients.id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load cart ingredients: %w", err)
	}

	out := make([]types.RecipeIngredientResponse, len(rows))
	for i, row := range rows {
		out[i] = types.RecipeIngredientResponse{
			ID:              row.Ingredient.ID,
			Name:            row.Ingredient.Name,
			MeasurementUnit: row.Ingredient.MeasurementUnit,
			Amount:          row.Amount,
		}
	}
	return out, nil
}
