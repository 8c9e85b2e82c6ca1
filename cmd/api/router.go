package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"movies-backend/internal/authz"
	"movies-backend/internal/shared"
	"movies-backend/internal/shared/middleware"
	"movies-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Forwarding headers are believed only from configured proxies.
	if err := router.SetTrustedProxies(c.Config.App.TrustedProxies); err != nil {
		log.Fatal().Err(err).Msg("Invalid trusted proxies")
	}

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Metrics(),
	)

	router.GET("/_health", healthCheckHandler(c))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	if c.RateLimiter != nil {
		api.Use(middleware.RateLimit(c.RateLimiter))
	}
	api.Use(
		middleware.APIVersion(),
		middleware.Authenticate(c.JWTManager, middleware.APIKeyAuth{
			Key:    c.Config.Auth.APIKey,
			UserID: c.Config.Auth.APIKeyUserID,
		}),
	)

	setupMovieRoutes(api, c)
	setupRatingRoutes(api, c)

	return router
}

// ========================================
// MOVIE ROUTES
// ========================================
func setupMovieRoutes(api *gin.RouterGroup, c *container.Container) {
	cached := middleware.OutputCache(c.Cache, shared.CacheTagMovies, c.Config.Redis.CacheTTL)

	movies := api.Group("/movies")
	{
		// Public (optional user)
		movies.GET("", cached, c.MovieHandler.ListMovies)
		movies.GET("/:id", cached, c.MovieHandler.GetMovie)

		// Trusted members
		movies.POST("",
			middleware.RequirePolicy(c.Enforcer, authz.ObjectMovies, authz.ActionWrite),
			c.MovieHandler.CreateMovie)
		movies.PUT("/:id",
			middleware.RequirePolicy(c.Enforcer, authz.ObjectMovies, authz.ActionWrite),
			c.MovieHandler.UpdateMovie)

		// Admin
		movies.DELETE("/:id",
			middleware.RequirePolicy(c.Enforcer, authz.ObjectMovies, authz.ActionDelete),
			c.MovieHandler.DeleteMovie)

		// Ratings of the calling user
		movies.PUT("/:id/ratings",
			middleware.RequirePolicy(c.Enforcer, authz.ObjectRatings, authz.ActionWrite),
			c.RatingHandler.RateMovie)
		movies.DELETE("/:id/ratings",
			middleware.RequirePolicy(c.Enforcer, authz.ObjectRatings, authz.ActionWrite),
			c.RatingHandler.DeleteRating)
	}
}

// ========================================
// RATING ROUTES
// ========================================
func setupRatingRoutes(api *gin.RouterGroup, c *container.Container) {
	ratings := api.Group("/ratings")
	{
		ratings.GET("/me",
			middleware.RequirePolicy(c.Enforcer, authz.ObjectRatings, authz.ActionRead),
			c.RatingHandler.GetUserRatings)
	}
}

// ========================================
// HEALTH CHECK
// ========================================
func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checks := c.HealthCheck(ctx.Request.Context())

		status := http.StatusOK
		result := gin.H{}
		for name, err := range checks {
			if err != nil {
				status = http.StatusServiceUnavailable
				result[name] = err.Error()
				continue
			}
			result[name] = "ok"
		}

		body := gin.H{
			"status":  http.StatusText(status),
			"version": c.Config.App.Version,
			"checks":  result,
		}
		if c.DB != nil {
			if stats, err := c.DB.Stats(); err == nil {
				body["pool"] = gin.H{
					"total":          stats.TotalConns,
					"idle":           stats.IdleConns,
					"acquired":       stats.AcquiredConns,
					"max":            stats.MaxConns,
					"avg_acquire_ms": stats.AverageAcquire().Milliseconds(),
				}
			}
		}

		ctx.JSON(status, body)
	}
}
