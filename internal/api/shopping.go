package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/service"
)

type ShoppingHandler struct {
	shopping *service.ShoppingService
}

func NewShoppingHandler(shopping *service.ShoppingService) *ShoppingHandler {
	return &ShoppingHandler{shopping: shopping}
}

func (h *ShoppingHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/recipes/download_shopping_cart/", middleware.RequireAuth(), h.Download)
	router.GET("/recipes/shopping_cart_ingredients/", middleware.RequireAuth(), h.Ingredients)
	router.GET("/shopping_cart/ingredients/", middleware.RequireAuth(), h.RecipeIngredients)
}

// Download serves the aggregated shopping list as an attachment. ?format=pdf
// selects the PDF rendering.
func (h *ShoppingHandler) Download(c *gin.Context) {
	export, err := h.shopping.Export(c.Request.Context(), middleware.UserID(c), c.Query("format"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename))
	c.Data(http.StatusOK, export.ContentType, export.Content)
}

func (h *ShoppingHandler) Ingredients(c *gin.Context) {
	items, err := h.shopping.CartIngredients(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *ShoppingHandler) RecipeIngredients(c *gin.Context) {
	items, err := h.shopping.CartRecipeIngredients(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
