package routes

import (
	"time"

	"checkout-service/controllers"
	"checkout-service/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type Controllers struct {
	Webhook   *controllers.WebhookController
	User      *controllers.UserController
	Health    *controllers.HealthController
	TestOrder *controllers.TestOrderController
	Env       string
}

func RegisterRoutes(r *gin.Engine, ctrls Controllers) {
	r.Use(middleware.SecurityHeaders())

	r.GET("/health", ctrls.Health.Health)

	// Stripe webhook (no auth; the signature is the authentication)
	r.POST("/api/webhooks/stripe", ctrls.Webhook.StripeWebhook)

	users := r.Group("/api/users")
	users.Use(middleware.NewRateLimiter(rate.Limit(5), 10, 5*time.Minute).Middleware())
	users.Use(middleware.AuthMiddleware())
	users.POST("/sync", ctrls.User.SyncUser)

	if ctrls.Env != "production" && ctrls.TestOrder != nil {
		r.POST("/api/test-order", ctrls.TestOrder.CreateTestOrder)
	}
}
