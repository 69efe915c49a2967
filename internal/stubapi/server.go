package stubapi

import (
	"fmt"
	"time"

	"dishdash/internal/infrastructure/config"
	"dishdash/internal/pkg/common"
	"dishdash/internal/stubapi/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// APIPrefix 所有業務路由的前綴
const APIPrefix = "/api/v1"

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, store *Store) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	issuer, err := NewTokenIssuer(cfg.Stub.JWTSecret, cfg.Stub.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token issuer: %w", err)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	if cfg.Stub.MaxBodyBytes > 0 {
		router.Use(middleware.BodySizeLimit(cfg.Stub.MaxBodyBytes))
	}

	router.GET("/", Root(cfg.App.Version))
	router.GET("/health", HealthCheck(cfg.App.Version, store))

	v1 := router.Group(APIPrefix)
	if rl := cfg.Stub.RateLimit; rl.Enabled {
		v1.Use(middleware.RateLimit(middleware.NewRateLimiter(rl.Requests, rl.Window), rl.Window))
	}

	h := NewHandler(store, issuer)
	v1.POST("/auth/login", h.Login)

	authed := v1.Group("")
	authed.Use(AuthRequired(issuer, store))
	{
		authed.GET("/me", h.Me)
		authed.GET("/me/preferences", h.GetPreferences)
		authed.PUT("/me/preferences", h.UpdatePreferences)

		recipes := authed.Group("/recipes")
		recipes.POST("/generate", h.Generate)
		recipes.POST("/details", h.Details)
		recipes.GET("/saved", h.ListSaved)
		recipes.POST("/saved/:recipe_id", h.Save)
		recipes.DELETE("/saved/:recipe_id", h.Unsave)
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("rate_limit", cfg.Stub.RateLimit.Enabled),
		zap.Int64("max_body_size", cfg.Stub.MaxBodyBytes),
	)

	return router, nil
}
