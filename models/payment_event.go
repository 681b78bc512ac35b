package models

// EventKind is the closed set of provider event kinds this service acts on.
// Adding a kind means touching every switch over EventKind, which is the
// point: new provider events are a deliberate decision, not a silently
// ignored default branch.
type EventKind int

const (
	// KindCheckoutCompleted is a finished checkout session; the only kind
	// that produces an order.
	KindCheckoutCompleted EventKind = iota
	// KindOther covers every event kind we acknowledge without acting on.
	KindOther
)

func (k EventKind) String() string {
	switch k {
	case KindCheckoutCompleted:
		return "checkout_completed"
	case KindOther:
		return "other"
	}
	return "unknown"
}

// PaymentEvent is the decoded, verified provider notification reduced to the
// facts order creation needs. Built once per inbound request and discarded
// after reconciliation.
type PaymentEvent struct {
	Kind     EventKind
	StripeID string
	// AmountMinor is the total in minor currency units (cents). Zero when
	// the provider omitted the amount.
	AmountMinor int64
	// EventID and BuyerID come from the session's correlation metadata and
	// may be empty; the reconciler decides what that means.
	EventID string
	BuyerID string
}
