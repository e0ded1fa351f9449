package auth

import (
	"github.com/gin-gonic/gin"

	"srsevents/internal/shared/middleware"
	"srsevents/pkg/ratelimit"
)

func RegisterRoutes(rg *gin.RouterGroup, controller *Controller, limiter *ratelimit.RateLimiter) {
	authGroup := rg.Group("/auth")
	authGroup.Use(ratelimit.Middleware(limiter, ratelimit.CategoryAuth))
	{
		authGroup.POST("/register", controller.Register)
		authGroup.POST("/login", controller.Login)
		authGroup.POST("/member-login", controller.MemberLogin)
		authGroup.POST("/refresh", controller.Refresh)
	}

	protected := rg.Group("/auth")
	protected.Use(middleware.JWTAuth())
	{
		protected.GET("/me", controller.Profile)
		protected.POST("/change-password", controller.ChangePassword)
	}
}
