// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"srsevents/internal/analytics"
	"srsevents/internal/auth"
	"srsevents/internal/bookings"
	"srsevents/internal/events"
	"srsevents/internal/shared/config"
	"srsevents/internal/shared/database"
	"srsevents/pkg/ratelimit"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Controllers bundles every feature controller the router mounts.
type Controllers struct {
	Auth      *auth.Controller
	Events    *events.Controller
	Bookings  *bookings.Controller
	Analytics *analytics.Controller
}

// Router holds all route dependencies
type Router struct {
	config      *config.Config
	db          *database.DB
	controllers Controllers
	rateLimiter *ratelimit.RateLimiter
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, controllers Controllers, limiter *ratelimit.RateLimiter) *Router {
	return &Router{
		config:      cfg,
		db:          db,
		controllers: controllers,
		rateLimiter: limiter,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := engine.Group(r.config.GetAPIBasePath())
	{
		auth.RegisterRoutes(api, r.controllers.Auth, r.rateLimiter)
		events.RegisterRoutes(api, r.controllers.Events)
		bookings.RegisterRoutes(api, r.controllers.Bookings, r.rateLimiter)
		analytics.RegisterRoutes(api, r.controllers.Analytics)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "srsevents-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "srsevents-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})
}
