package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/types"
)

const qrSize = 256

type ShortLinkHandler struct {
	recipes *service.RecipeService
}

func NewShortLinkHandler(recipes *service.RecipeService) *ShortLinkHandler {
	return &ShortLinkHandler{recipes: recipes}
}

// RegisterRoutes mounts the link endpoints under the API group.
func (h *ShortLinkHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/recipes/:id/get-link/", h.GetLink)
	router.GET("/recipes/:id/get-link/qr/", h.QRCode)
}

// RegisterRedirect mounts the public /s/<uuid>/ resolver.
func (h *ShortLinkHandler) RegisterRedirect(router gin.IRoutes) {
	router.GET("/s/:uuid/", h.Redirect)
}

func (h *ShortLinkHandler) GetLink(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	link, err := h.recipes.ShortLink(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.ShortLinkResponse{ShortLink: link})
}

func (h *ShortLinkHandler) QRCode(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	link, err := h.recipes.ShortLink(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	png, err := qrcode.Encode(link, qrcode.Medium, qrSize)
	if err != nil {
		respondError(c, fmt.Errorf("failed to encode QR code: %w", err))
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *ShortLinkHandler) Redirect(c *gin.Context) {
	id, err := h.recipes.Resolve(c.Request.Context(), c.Param("uuid"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/api/recipes/%d/", id))
}
