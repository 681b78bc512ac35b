package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"checkout-service/models"
	"checkout-service/repository"

	"go.uber.org/zap"
)

// Outcome is the definitive result of reconciling a payment event.
type Outcome int

const (
	// OutcomeCreated means a new order was persisted.
	OutcomeCreated Outcome = iota
	// OutcomeAlreadyExists means an order for this stripe id was already
	// there; nothing was written. The normal result of a redelivery.
	OutcomeAlreadyExists
	// OutcomeRejected means correlation metadata was missing or did not
	// resolve. Permanent: redelivering the same event cannot fix it.
	OutcomeRejected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeAlreadyExists:
		return "already_exists"
	case OutcomeRejected:
		return "rejected"
	}
	return "unknown"
}

// ReconcileResult carries the outcome and, for the two success variants, the
// persisted order. Reason is set only when Outcome is OutcomeRejected.
type ReconcileResult struct {
	Outcome Outcome
	Order   *models.Order
	Reason  string
}

// OrderService turns extracted payment facts into exactly one persisted order
// per stripe id, no matter how many times the provider delivers the event.
type OrderService struct {
	orders repository.OrderRepo
	users  repository.UserRepo
	logger *zap.Logger
}

func NewOrderService(orders repository.OrderRepo, users repository.UserRepo, logger *zap.Logger) *OrderService {
	return &OrderService{orders: orders, users: users, logger: logger}
}

// Reconcile applies the idempotency and validation rules to a checkout event.
// The returned error is always transient (storage unavailable); every
// business decision is expressed through the result.
func (s *OrderService) Reconcile(ctx context.Context, ev models.PaymentEvent) (ReconcileResult, error) {
	existing, err := s.orders.FindByStripeID(ctx, ev.StripeID)
	if err == nil {
		s.logger.Info("Duplicate delivery, order already exists",
			zap.String("stripe_id", ev.StripeID),
		)
		return ReconcileResult{Outcome: OutcomeAlreadyExists, Order: existing}, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return ReconcileResult{}, fmt.Errorf("order lookup failed: %w", err)
	}

	if ev.EventID == "" || ev.BuyerID == "" {
		s.logger.Warn("Rejecting checkout with missing correlation metadata",
			zap.String("stripe_id", ev.StripeID),
			zap.String("event_id", ev.EventID),
			zap.String("buyer_id", ev.BuyerID),
		)
		return ReconcileResult{Outcome: OutcomeRejected, Reason: "missing correlation metadata"}, nil
	}

	ok, err := s.orders.EventExists(ctx, ev.EventID)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("event lookup failed: %w", err)
	}
	if !ok {
		return ReconcileResult{Outcome: OutcomeRejected, Reason: "unknown event reference"}, nil
	}

	ok, err = s.users.UserExists(ctx, ev.BuyerID)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("buyer lookup failed: %w", err)
	}
	if !ok {
		return ReconcileResult{Outcome: OutcomeRejected, Reason: "unknown buyer reference"}, nil
	}

	order := &models.Order{
		StripeID:    ev.StripeID,
		EventID:     ev.EventID,
		BuyerID:     ev.BuyerID,
		TotalAmount: FormatAmount(ev.AmountMinor),
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.orders.Insert(ctx, order); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// Lost the race against a concurrent redelivery. The winner's
			// order is the order.
			return s.resolveConflict(ctx, ev.StripeID)
		}
		return ReconcileResult{}, fmt.Errorf("order insert failed: %w", err)
	}

	s.logger.Info("Order created",
		zap.String("stripe_id", order.StripeID),
		zap.String("event_id", order.EventID),
		zap.String("buyer_id", order.BuyerID),
		zap.String("total_amount", order.TotalAmount),
	)
	return ReconcileResult{Outcome: OutcomeCreated, Order: order}, nil
}

func (s *OrderService) resolveConflict(ctx context.Context, stripeID string) (ReconcileResult, error) {
	winner, err := s.orders.FindByStripeID(ctx, stripeID)
	if err != nil {
		// Orders are never deleted, so the winner must be there; failing to
		// read it back is a storage fault and the provider should redeliver.
		return ReconcileResult{}, fmt.Errorf("conflict re-fetch failed: %w", err)
	}
	s.logger.Info("Duplicate insert race resolved",
		zap.String("stripe_id", stripeID),
	)
	return ReconcileResult{Outcome: OutcomeAlreadyExists, Order: winner}, nil
}
