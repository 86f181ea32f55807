package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/types"
)

// UserHandler serves registration, profiles, avatars, passwords and subscriptions.
type UserHandler struct {
	auth    *service.AuthService
	users   *service.UserService
	follows *service.FollowService
}

func NewUserHandler(auth *service.AuthService, users *service.UserService, follows *service.FollowService) *UserHandler {
	return &UserHandler{auth: auth, users: users, follows: follows}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("/", h.List)
		users.POST("/", h.Register)
		users.GET("/me/", middleware.RequireAuth(), h.Me)
		users.PUT("/me/avatar/", middleware.RequireAuth(), h.SetAvatar)
		users.DELETE("/me/avatar/", middleware.RequireAuth(), h.DeleteAvatar)
		users.POST("/set_password/", middleware.RequireAuth(), h.SetPassword)
		users.GET("/subscriptions/", middleware.RequireAuth(), h.Subscriptions)
		users.GET("/:id/", h.Get)
		users.POST("/:id/subscribe/", middleware.RequireAuth(), h.Subscribe)
		users.DELETE("/:id/subscribe/", middleware.RequireAuth(), h.Unsubscribe)
	}
}

func (h *UserHandler) List(c *gin.Context) {
	page := pageRequest(c)
	users, count, err := h.users.List(c.Request.Context(), middleware.UserID(c), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginate(c, page, count, users))
}

func (h *UserHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.auth.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.users.Get(c.Request.Context(), 0, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	user, err := h.users.Get(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Me(c *gin.Context) {
	userID := middleware.UserID(c)
	user, err := h.users.Get(c.Request.Context(), userID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) SetAvatar(c *gin.Context) {
	var req types.AvatarRequest
	if !bindJSON(c, &req) {
		return
	}

	url, err := h.users.SetAvatar(c.Request.Context(), middleware.UserID(c), req.Avatar)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.AvatarResponse{Avatar: url})
}

func (h *UserHandler) DeleteAvatar(c *gin.Context) {
	if err := h.users.DeleteAvatar(c.Request.Context(), middleware.UserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	var req types.SetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.auth.SetPassword(c.Request.Context(), middleware.UserID(c), &req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.DetailResponse{Detail: "Password changed."})
}

func (h *UserHandler) Subscriptions(c *gin.Context) {
	page := pageRequest(c)
	limit := queryInt(c, "recipes_limit", service.DefaultRecipesLimit)

	subs, count, err := h.follows.Subscriptions(c.Request.Context(), middleware.UserID(c), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginate(c, page, count, subs))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	limit := queryInt(c, "recipes_limit", service.DefaultRecipesLimit)

	sub, err := h.follows.Subscribe(c.Request.Context(), middleware.UserID(c), id, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.follows.Unsubscribe(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
