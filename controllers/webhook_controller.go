package controllers

import (
	"context"
	"net/http"

	"checkout-service/models"
	"checkout-service/services"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
)

// WebhookParser verifies an inbound request and yields the decoded event.
type WebhookParser interface {
	ParseWebhook(r *http.Request) (stripe.Event, error)
}

// OrderReconciler applies the idempotent order-creation rules.
type OrderReconciler interface {
	Reconcile(ctx context.Context, ev models.PaymentEvent) (services.ReconcileResult, error)
}

type WebhookController struct {
	Stripe WebhookParser
	Orders OrderReconciler
	Logger *zap.Logger
}

func NewWebhookController(parser WebhookParser, orders OrderReconciler, logger *zap.Logger) *WebhookController {
	return &WebhookController{Stripe: parser, Orders: orders, Logger: logger}
}

// StripeWebhook receives provider notifications. Response codes drive the
// provider's redelivery: any 2xx stops retries, so only signature failures
// (400) and transient storage faults (500) answer non-2xx. A rejection for
// missing correlation metadata is acknowledged with 200 because redelivering
// the same broken payload can never succeed.
func (wc *WebhookController) StripeWebhook(c *gin.Context) {
	event, err := wc.Stripe.ParseWebhook(c.Request)
	if err != nil {
		wc.Logger.Warn("Stripe webhook signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook"})
		return
	}

	ev, err := services.Interpret(event)
	if err != nil {
		wc.Logger.Error("Failed to interpret webhook event",
			zap.String("event_type", string(event.Type)),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	switch ev.Kind {
	case models.KindCheckoutCompleted:
		wc.handleCheckoutCompleted(c, ev)
	case models.KindOther:
		wc.Logger.Info("Ignoring webhook event kind", zap.String("event_type", string(event.Type)))
		c.JSON(http.StatusOK, gin.H{"status": "received"})
	}
}

func (wc *WebhookController) handleCheckoutCompleted(c *gin.Context, ev models.PaymentEvent) {
	result, err := wc.Orders.Reconcile(c.Request.Context(), ev)
	if err != nil {
		wc.Logger.Error("Order reconciliation failed",
			zap.String("stripe_id", ev.StripeID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process event"})
		return
	}

	switch result.Outcome {
	case services.OutcomeCreated, services.OutcomeAlreadyExists:
		c.JSON(http.StatusOK, gin.H{
			"status":  "received",
			"outcome": result.Outcome.String(),
			"order":   result.Order,
		})
	case services.OutcomeRejected:
		c.JSON(http.StatusOK, gin.H{
			"status": "rejected",
			"reason": result.Reason,
		})
	}
}
