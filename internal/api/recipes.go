package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/types"
)

type RecipeHandler struct {
	recipes   *service.RecipeService
	favorites *service.FavoriteService
	cart      *service.CartService
	limiter   middleware.Limiter
}

// NewRecipeHandler creates a RecipeHandler. limiter throttles recipe writes per
// user; nil disables throttling.
func NewRecipeHandler(recipes *service.RecipeService, favorites *service.FavoriteService, cart *service.CartService, limiter middleware.Limiter) *RecipeHandler {
	return &RecipeHandler{
		recipes:   recipes,
		favorites: favorites,
		cart:      cart,
		limiter:   limiter,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	write := []gin.HandlerFunc{middleware.RequireAuth()}
	if h.limiter != nil {
		write = append(write, middleware.RateLimit(h.limiter))
	}
	with := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, write...), handler)
	}

	recipes := router.Group("/recipes")
	{
		recipes.GET("/", h.List)
		recipes.POST("/", with(h.Create)...)
		recipes.GET("/:id/", h.Get)
		recipes.PATCH("/:id/", with(h.Patch)...)
		recipes.PUT("/:id/", with(h.Put)...)
		recipes.DELETE("/:id/", with(h.Delete)...)

		recipes.POST("/:id/favorite/", middleware.RequireAuth(), h.AddFavorite)
		recipes.DELETE("/:id/favorite/", middleware.RequireAuth(), h.RemoveFavorite)
		recipes.POST("/:id/shopping_cart/", middleware.RequireAuth(), h.AddToCart)
		recipes.DELETE("/:id/shopping_cart/", middleware.RequireAuth(), h.RemoveFromCart)
	}
}

func (h *RecipeHandler) List(c *gin.Context) {
	page := pageRequest(c)
	viewer := middleware.UserID(c)

	filter := service.RecipeFilter{
		Search: c.Query("search"),
	}
	if author, err := strconv.ParseUint(c.Query("author"), 10, 64); err == nil {
		filter.AuthorID = uint(author)
	}
	if viewer != 0 {
		filter.Favorited = queryFlag(c, "is_favorited")
		filter.InCart = queryFlag(c, "is_in_shopping_cart")
	}

	recipes, count, err := h.recipes.List(c.Request.Context(), viewer, filter, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginate(c, page, count, recipes))
}

func (h *RecipeHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	recipe, err := h.recipes.Get(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) Create(c *gin.Context) {
	var req types.RecipeRequest
	if !bindJSON(c, &req) {
		return
	}

	recipe, err := h.recipes.Create(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) Patch(c *gin.Context) { h.update(c, true) }

func (h *RecipeHandler) Put(c *gin.Context) { h.update(c, false) }

func (h *RecipeHandler) update(c *gin.Context, partial bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req types.RecipeRequest
	if !bindJSON(c, &req) {
		return
	}

	recipe, err := h.recipes.Update(c.Request.Context(), middleware.UserID(c), id, &req, partial)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.recipes.Delete(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	h.add(c, h.favorites.Add)
}

func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	h.remove(c, h.favorites.Remove)
}

func (h *RecipeHandler) AddToCart(c *gin.Context) {
	h.add(c, h.cart.Add)
}

func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	h.remove(c, h.cart.Remove)
}

type addFunc func(ctx context.Context, userID, recipeID uint) (*types.RecipeShortResponse, error)

type removeFunc func(ctx context.Context, userID, recipeID uint) error

func (h *RecipeHandler) add(c *gin.Context, fn addFunc) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	recipe, err := fn(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) remove(c *gin.Context, fn removeFunc) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := fn(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func queryFlag(c *gin.Context, name string) bool {
	switch c.Query(name) {
	case "1", "true", "True":
		return true
	}
	return false
}
