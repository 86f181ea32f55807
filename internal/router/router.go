package router

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/api"
	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/storage"
	"github.com/foodgram/backend/internal/validation"
)

// MaxBodyBytes caps request bodies; base64 images are the largest payloads.
const MaxBodyBytes = 10 << 20

// Deps are the long-lived resources the HTTP layer is built on. Redis is optional.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *redis.Client
	Store  storage.Store
}

// SetupRouter wires services and handlers and configures the application routes
func SetupRouter(deps Deps) (*gin.Engine, error) {
	cfg := deps.Config
	if err := validation.RegisterGin(); err != nil {
		return nil, err
	}

	var revoker service.TokenRevoker
	if deps.Redis != nil {
		revoker = service.NewRedisRevoker(deps.Redis)
	}

	presenter := service.NewPresenter(deps.DB, deps.Store)
	authService := service.NewAuthService(deps.DB, cfg.JWTSecret, cfg.JWTTTL, revoker)
	recipeService := service.NewRecipeService(deps.DB, deps.Store, presenter, cfg.BaseURL)

	var writeLimiter middleware.Limiter
	if cfg.RateLimitWrites > 0 {
		writeLimiter = middleware.NewWriteLimiter(deps.Redis, cfg.RateLimitWrites)
	}

	router := gin.New()
	router.Use(
		middleware.RequestLogger(),
		middleware.Recovery(),
		middleware.BodyLimit(MaxBodyBytes),
		middleware.Metrics(),
		middleware.CORS(cfg.CORSOrigins),
	)

	health := api.NewHealthHandler(deps.DB)
	router.GET("/health", health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if local, ok := deps.Store.(*storage.LocalStore); ok && strings.HasPrefix(cfg.MediaURL, "/") {
		router.Static(strings.TrimSuffix(cfg.MediaURL, "/"), local.Root)
	}

	shortLinks := api.NewShortLinkHandler(recipeService)
	shortLinks.RegisterRedirect(router)

	apiGroup := router.Group("/api")
	apiGroup.Use(middleware.OptionalAuth(authService))
	apiGroup.GET("/health", health.Health)

	api.NewAuthHandler(authService).RegisterRoutes(apiGroup)
	api.NewUserHandler(
		authService,
		service.NewUserService(deps.DB, deps.Store, presenter),
		service.NewFollowService(deps.DB, presenter),
	).RegisterRoutes(apiGroup)
	api.NewIngredientHandler(service.NewIngredientService(deps.DB, presenter)).RegisterRoutes(apiGroup)
	api.NewRecipeHandler(
		recipeService,
		service.NewFavoriteService(deps.DB, presenter),
		service.NewCartService(deps.DB, presenter),
		writeLimiter,
	).RegisterRoutes(apiGroup)
	api.NewShoppingHandler(service.NewShoppingService(deps.DB, presenter, cfg.PDFFontPath)).RegisterRoutes(apiGroup)
	shortLinks.RegisterRoutes(apiGroup)

	return router, nil
}
