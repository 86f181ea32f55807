package service_test

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/storage"
	"github.com/foodgram/backend/internal/testhelpers"
)

type services struct {
	db          *gorm.DB
	store       *storage.LocalStore
	auth        *service.AuthService
	users       *service.UserService
	follows     *service.FollowService
	ingredients *service.IngredientService
	recipes     *service.RecipeService
	favorites   *service.FavoriteService
	cart        *service.CartService
	shopping    *service.ShoppingService
}

func setup(t *testing.T) *services {
	t.Helper()
	db := testhelpers.NewSQLiteDB(t)
	store := storage.NewLocalStore(t.TempDir(), "http://testserver/media/")
	presenter := service.NewPresenter(db, store)

	return &services{
		db:          db,
		store:       store,
		auth:        service.NewAuthService(db, "test-secret", time.Hour, nil),
		users:       service.NewUserService(db, store, presenter),
		follows:     service.NewFollowService(db, presenter),
		ingredients: service.NewIngredientService(db, presenter),
		recipes:     service.NewRecipeService(db, store, presenter, "http://testserver"),
		favorites:   service.NewFavoriteService(db, presenter),
		cart:        service.NewCartService(db, presenter),
		shopping:    service.NewShoppingService(db, presenter, ""),
	}
}

var ctx = context.Background()

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
