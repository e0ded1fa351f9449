package analytics

import (
	"github.com/gin-gonic/gin"

	"srsevents/internal/shared/middleware"
)

func RegisterRoutes(rg *gin.RouterGroup, controller *Controller) {
	analytics := rg.Group("/admin/analytics")
	analytics.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		analytics.GET("/dashboard", controller.Dashboard)
		analytics.GET("/revenue", controller.Revenue)
		analytics.GET("/events/:eventId", controller.EventStats)
	}
}
