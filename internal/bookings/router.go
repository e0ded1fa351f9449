package bookings

import (
	"github.com/gin-gonic/gin"

	"srsevents/internal/shared/middleware"
	"srsevents/pkg/ratelimit"
)

// RegisterRoutes wires booking endpoints. Everything requires auth; the
// create and scan paths additionally carry rate limiting because both are
// hotspots (sale opening, venue gates).
func RegisterRoutes(rg *gin.RouterGroup, controller *Controller, limiter *ratelimit.RateLimiter) {
	bookings := rg.Group("/bookings")
	bookings.Use(middleware.JWTAuth())
	{
		bookings.POST("", ratelimit.Middleware(limiter, ratelimit.CategoryBooking), controller.CreateBooking)
		bookings.GET("/my", controller.GetMyBookings)
		bookings.GET("/:bookingId", controller.GetBooking)
		bookings.GET("/:bookingId/ticket", controller.DownloadTicket)
		bookings.POST("/:bookingId/cancel", controller.CancelBooking)

		bookings.POST("/:bookingId/payment/initiate", controller.InitiatePayment)
		bookings.POST("/payment/verify", controller.VerifyPayment)
	}

	sponsorships := rg.Group("/sponsorships")
	sponsorships.Use(middleware.JWTAuth(), middleware.RequireMember())
	{
		sponsorships.GET("/pending", controller.ListPendingApprovals)
		sponsorships.POST("/:bookingId/approve", controller.ApproveSponsorship)
		sponsorships.POST("/:bookingId/reject", controller.RejectSponsorship)
	}

	admin := rg.Group("/admin")
	admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		admin.GET("/bookings", controller.GetAllBookings)
		admin.GET("/events/:eventId/bookings", controller.GetBookingsByEvent)
		admin.POST("/bookings/:bookingId/complete", controller.CompleteBooking)

		admin.POST("/offline-bookings", controller.CreateOfflineBooking)
		admin.GET("/offline-bookings", controller.ListOfflineBookings)
		admin.PUT("/offline-bookings/:bookingId", controller.EditOfflineBooking)
		admin.DELETE("/offline-bookings/:bookingId", controller.DeleteOfflineBooking)

		admin.POST("/scan", ratelimit.Middleware(limiter, ratelimit.CategoryScan), controller.ScanQR)
	}
}
