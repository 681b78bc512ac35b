package services

import (
	"bytes"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/webhook"
)

// StripeService verifies inbound webhook requests against the shared signing
// secret. Verification runs over the literal request bytes; the body must not
// be re-serialized before checking, or the signature breaks.
type StripeService struct {
	WebhookKey string
}

func NewStripeService(webhookKey string) *StripeService {
	return &StripeService{WebhookKey: webhookKey}
}

// ParseWebhook reads the raw body, restores it for any later reader, and
// verifies the Stripe-Signature header. webhook.ConstructEvent does the
// HMAC-SHA256 check with constant-time comparison and a timestamp tolerance
// window, so a tampered body, wrong secret, or replayed old payload all fail
// here before any event is interpreted.
func (s *StripeService) ParseWebhook(r *http.Request) (stripe.Event, error) {
	var event stripe.Event
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		return event, err
	}
	r.Body = io.NopCloser(bytes.NewBuffer(payload))
	sigHeader := r.Header.Get("Stripe-Signature")
	return webhook.ConstructEvent(payload, sigHeader, s.WebhookKey)
}
