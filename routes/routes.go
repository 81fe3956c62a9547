package routes

import (
	"time"

	"homeease/handlers"
	"homeease/middleware"
	"homeease/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes sets up the booking lifecycle endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("", middleware.RequireRole(models.RoleUser), hb.CreateBooking)
		api.GET("", hb.ListBookings)
		api.GET("/:id", hb.GetBooking)
		api.PUT("/:id", middleware.RequireRole(models.RoleUser), hb.UpdateBooking)
		api.POST("/confirm", middleware.RequireRole(models.RoleProvider), hb.ConfirmBooking)
		api.POST("/cancel", middleware.RequireRole(models.RoleUser, models.RoleProvider), hb.CancelBooking)
		api.POST("/:id/complete", middleware.RequireRole(models.RoleProvider), hb.CompleteBooking)
	}
}

// RegisterProviderRoutes exposes the availability probe.
func RegisterProviderRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/providers")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.GET("/:id/availability", hb.CheckAvailability)
	}
}

// RegisterPaymentRoutes sets up payment endpoints. The webhook is authenticated
// by the gateway signature instead of a bearer token.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/api/payment/webhook", hb.PaymentWebhook)

	api := r.Group("/api/payment")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("/process", middleware.RequireRole(models.RoleUser), hb.ProcessPayment)
		api.POST("/:bookingId/refund", middleware.RequireRole(models.RoleProvider, models.RoleAdmin), hb.RefundPayment)
		api.GET("/:bookingId/verify", hb.VerifyPayment)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.Health)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterBookingRoutes(r, hb)
	RegisterProviderRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
}
