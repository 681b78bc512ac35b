package services

import (
	"encoding/json"
	"fmt"
	"strconv"

	"checkout-service/models"

	"github.com/stripe/stripe-go/v80"
)

// KindOf maps the provider's event type string onto the closed EventKind set.
func KindOf(t stripe.EventType) models.EventKind {
	if t == "checkout.session.completed" {
		return models.KindCheckoutCompleted
	}
	return models.KindOther
}

// Interpret reduces a verified provider event to the facts the reconciler
// needs. Missing metadata keys become empty strings rather than errors:
// incomplete correlation data is a business problem for the reconciler, not a
// parse failure.
func Interpret(event stripe.Event) (models.PaymentEvent, error) {
	kind := KindOf(event.Type)
	if kind == models.KindOther {
		return models.PaymentEvent{Kind: models.KindOther}, nil
	}

	if event.Data == nil {
		return models.PaymentEvent{}, fmt.Errorf("event %q carries no data object", event.ID)
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return models.PaymentEvent{}, fmt.Errorf("failed to unmarshal checkout session: %w", err)
	}

	return models.PaymentEvent{
		Kind:        models.KindCheckoutCompleted,
		StripeID:    sess.ID,
		AmountMinor: sess.AmountTotal,
		EventID:     sess.Metadata["eventId"],
		BuyerID:     sess.Metadata["buyerId"],
	}, nil
}

// FormatAmount renders minor currency units as a major-unit decimal string
// with no forced trailing zeros: 2500 -> "25", 2550 -> "25.5", 99 -> "0.99".
// Integer arithmetic only; float division would drift on large totals.
func FormatAmount(minor int64) string {
	neg := minor < 0
	if neg {
		minor = -minor
	}

	whole := minor / 100
	rem := minor % 100

	var s string
	switch {
	case rem == 0:
		s = strconv.FormatInt(whole, 10)
	case rem%10 == 0:
		s = fmt.Sprintf("%d.%d", whole, rem/10)
	default:
		s = fmt.Sprintf("%d.%02d", whole, rem)
	}

	if neg {
		s = "-" + s
	}
	return s
}
