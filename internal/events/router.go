package events

import (
	"github.com/gin-gonic/gin"

	"srsevents/internal/shared/middleware"
)

// RegisterRoutes wires event endpoints. Browsing is public; mutation is
// admin-only.
func RegisterRoutes(rg *gin.RouterGroup, controller *Controller) {
	events := rg.Group("/events")
	{
		events.GET("", controller.ListEvents)
		events.GET("/:id", controller.GetEvent)
	}

	admin := rg.Group("/events")
	admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		admin.POST("", controller.CreateEvent)
		admin.PUT("/:id", controller.UpdateEvent)
		admin.DELETE("/:id", controller.DeleteEvent)
		admin.POST("/:id/publish", controller.PublishEvent)
	}
}
