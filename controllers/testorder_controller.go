package controllers

import (
	"fmt"
	"net/http"
	"time"

	"checkout-service/models"
	"checkout-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TestOrderController exercises the full reconciliation path with a synthetic
// checkout. Only registered outside production; useful for verifying the
// storage wiring end to end without touching Stripe.
type TestOrderController struct {
	Orders OrderReconciler
	Logger *zap.Logger
}

func NewTestOrderController(orders OrderReconciler, logger *zap.Logger) *TestOrderController {
	return &TestOrderController{Orders: orders, Logger: logger}
}

type testOrderRequest struct {
	EventID     string `json:"eventId" binding:"required"`
	BuyerID     string `json:"buyerId" binding:"required"`
	AmountMinor int64  `json:"amountMinor"`
}

func (tc *TestOrderController) CreateTestOrder(c *gin.Context) {
	var req testOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "eventId and buyerId are required"})
		return
	}

	amount := req.AmountMinor
	if amount == 0 {
		amount = 2500
	}

	ev := models.PaymentEvent{
		Kind:        models.KindCheckoutCompleted,
		StripeID:    fmt.Sprintf("test_%d", time.Now().UnixNano()),
		AmountMinor: amount,
		EventID:     req.EventID,
		BuyerID:     req.BuyerID,
	}

	result, err := tc.Orders.Reconcile(c.Request.Context(), ev)
	if err != nil {
		tc.Logger.Error("Test order creation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to create test order"})
		return
	}
	if result.Outcome == services.OutcomeRejected {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": result.Reason})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "order": result.Order})
}
