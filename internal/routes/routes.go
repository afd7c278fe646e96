package routes

import (
	"os"

	"github.com/gin-gonic/gin"

	"lumina_back_office/internal/config"
	"lumina_back_office/internal/database"
	"lumina_back_office/internal/handlers"
	"lumina_back_office/internal/handlers/order"
	"lumina_back_office/internal/middleware"
	"lumina_back_office/internal/security"
)

// Routes exemptées de validation CSRF (le token y est justement délivré)
var csrfAllowList = []string{
	"/api/csrf/revoke",
	"/api/shipping/quote",
}

// RegisterRoutes câble le pipeline de sécurité puis les endpoints.
// Ordre des étages : headers de durcissement → compression → rate limit →
// sanitisation → CSRF → handler. Les headers de durcissement sont posés en
// premier pour couvrir aussi les réponses court-circuitées.
func RegisterRoutes(r *gin.Engine, tokenStore security.TokenStore) {
	csrfSecret := os.Getenv("CSRF_SECRET")
	rateLimit := config.GetInt("RATE_LIMIT_MAX", middleware.APIMaxRequests)
	rateWindow := config.GetDuration("RATE_LIMIT_WINDOW", middleware.APIWindow)
	compressMin := config.GetInt("COMPRESS_MIN_SIZE", middleware.DefaultCompressMinSize)

	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.Compress(compressMin))
	r.Use(middleware.RateLimit(database.Redis, rateLimit, rateWindow))
	r.Use(middleware.SanitizeInput())

	// Token CSRF (hors du groupe protégé, c'est lui qui amorce le cycle)
	r.GET("/api/csrf", middleware.CacheHeaders("no-cache"), handlers.IssueCSRFToken(tokenStore, csrfSecret))

	api := r.Group("/api")
	api.Use(middleware.CSRF(tokenStore, csrfSecret, csrfAllowList))
	{
		api.POST("/csrf/revoke", handlers.RevokeCSRFToken(tokenStore))
		api.POST("/shipping/quote", order.ShippingQuote)

		authed := api.Group("")
		authed.Use(middleware.AuthRequired())
		{
			authed.POST("/orders", order.CreateOrder)
			authed.GET("/orders", middleware.CacheHeaders("user-specific"), order.GetMyOrders)
			authed.GET("/orders/:id", middleware.CacheHeaders("user-specific"), order.GetOrderByID)
			authed.GET("/orders/:id/return-eligibility", middleware.CacheHeaders("api-dynamic"), order.ReturnEligibility)
			authed.POST("/orders/:id/cancel", order.CancelOrder)
			authed.POST("/orders/:id/refund", order.RequestRefund)

			admin := authed.Group("/admin")
			admin.Use(middleware.RequireAdmin)
			{
				admin.POST("/orders/:id/status", order.UpdateStatus)
				admin.PUT("/orders/:id/shipping", order.UpdateShipping)
				admin.PUT("/orders/:id/payment", order.UpdatePayment)
				admin.POST("/refunds/:refundId/process", order.ProcessRefund)
				admin.GET("/orders/search", middleware.CacheHeaders("api-dynamic"), order.SearchOrders)
			}
		}
	}
}
