package services

import (
	"context"
	"sync"
	"testing"

	"checkout-service/models"
	"checkout-service/repository"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// fakeOrderRepo is an in-memory OrderRepo that enforces the stripe_id unique
// constraint the way the real collection does.
type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]models.Order
	events map[string]bool

	findErr   error
	insertErr error
}

func newFakeOrderRepo(events ...string) *fakeOrderRepo {
	r := &fakeOrderRepo{
		orders: make(map[string]models.Order),
		events: make(map[string]bool),
	}
	for _, e := range events {
		r.events[e] = true
	}
	return r
}

func (r *fakeOrderRepo) FindByStripeID(ctx context.Context, stripeID string) (*models.Order, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orders[stripeID]; ok {
		cp := o
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeOrderRepo) Insert(ctx context.Context, order *models.Order) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[order.StripeID]; ok {
		return repository.ErrConflict
	}
	r.orders[order.StripeID] = *order
	return nil
}

func (r *fakeOrderRepo) EventExists(ctx context.Context, eventID string) (bool, error) {
	return r.events[eventID], nil
}

func (r *fakeOrderRepo) EnsureIndexes(ctx context.Context) error { return nil }

func (r *fakeOrderRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

// fakeUserRepo backs both the buyer existence check and the sync adapter.
type fakeUserRepo struct {
	mu      sync.Mutex
	byAuth  map[string]models.User
	idSet   map[string]bool
	findErr error
}

func newFakeUserRepo(ids ...string) *fakeUserRepo {
	r := &fakeUserRepo{
		byAuth: make(map[string]models.User),
		idSet:  make(map[string]bool),
	}
	for _, id := range ids {
		r.idSet[id] = true
	}
	return r
}

func (r *fakeUserRepo) FindByExternalAuthID(ctx context.Context, authID string) (*models.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byAuth[authID]; ok {
		cp := u
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) Insert(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byAuth[user.ExternalAuthID]; ok {
		return repository.ErrConflict
	}
	r.byAuth[user.ExternalAuthID] = *user
	return nil
}

func (r *fakeUserRepo) UserExists(ctx context.Context, userID string) (bool, error) {
	return r.idSet[userID], nil
}

func (r *fakeUserRepo) EnsureIndexes(ctx context.Context) error { return nil }

func checkoutEvent(stripeID string) models.PaymentEvent {
	return models.PaymentEvent{
		Kind:        models.KindCheckoutCompleted,
		StripeID:    stripeID,
		AmountMinor: 2500,
		EventID:     "E1",
		BuyerID:     "U1",
	}
}

func TestReconcile_CreatesOrder(t *testing.T) {
	orders := newFakeOrderRepo("E1")
	users := newFakeUserRepo("U1")
	svc := NewOrderService(orders, users, zap.NewNop())

	result, err := svc.Reconcile(context.Background(), checkoutEvent("cs_1"))

	assert.NoError(t, err)
	assert.Equal(t, OutcomeCreated, result.Outcome)
	assert.Equal(t, "cs_1", result.Order.StripeID)
	assert.Equal(t, "25", result.Order.TotalAmount)
	assert.Equal(t, "E1", result.Order.EventID)
	assert.Equal(t, "U1", result.Order.BuyerID)
	assert.False(t, result.Order.CreatedAt.IsZero())
	assert.Equal(t, 1, orders.count())
}

func TestReconcile_DuplicateDeliveryIsIdempotent(t *testing.T) {
	orders := newFakeOrderRepo("E1")
	users := newFakeUserRepo("U1")
	svc := NewOrderService(orders, users, zap.NewNop())

	first, err := svc.Reconcile(context.Background(), checkoutEvent("cs_dup"))
	assert.NoError(t, err)
	assert.Equal(t, OutcomeCreated, first.Outcome)

	second, err := svc.Reconcile(context.Background(), checkoutEvent("cs_dup"))
	assert.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyExists, second.Outcome)
	assert.Equal(t, first.Order.StripeID, second.Order.StripeID)
	assert.Equal(t, 1, orders.count())
}

func TestReconcile_MissingCorrelationIsRejected(t *testing.T) {
	cases := []struct {
		name    string
		eventID string
		buyerID string
	}{
		{"empty event id", "", "U1"},
		{"empty buyer id", "E1", ""},
		{"both empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			orders := newFakeOrderRepo("E1")
			users := newFakeUserRepo("U1")
			svc := NewOrderService(orders, users, zap.NewNop())

			ev := checkoutEvent("cs_rej")
			ev.EventID = tc.eventID
			ev.BuyerID = tc.buyerID

			result, err := svc.Reconcile(context.Background(), ev)
			assert.NoError(t, err)
			assert.Equal(t, OutcomeRejected, result.Outcome)
			assert.Equal(t, "missing correlation metadata", result.Reason)
			assert.Equal(t, 0, orders.count())
		})
	}
}

func TestReconcile_UnresolvedReferencesAreRejected(t *testing.T) {
	orders := newFakeOrderRepo("E1")
	users := newFakeUserRepo("U1")
	svc := NewOrderService(orders, users, zap.NewNop())

	ev := checkoutEvent("cs_bad_event")
	ev.EventID = "nope"
	result, err := svc.Reconcile(context.Background(), ev)
	assert.NoError(t, err)
	assert.Equal(t, OutcomeRejected, result.Outcome)
	assert.Equal(t, "unknown event reference", result.Reason)

	ev = checkoutEvent("cs_bad_buyer")
	ev.BuyerID = "nope"
	result, err = svc.Reconcile(context.Background(), ev)
	assert.NoError(t, err)
	assert.Equal(t, OutcomeRejected, result.Outcome)
	assert.Equal(t, "unknown buyer reference", result.Reason)

	assert.Equal(t, 0, orders.count())
}

func TestReconcile_InsertConflictResolvesAsAlreadyExists(t *testing.T) {
	orders := newFakeOrderRepo("E1")
	users := newFakeUserRepo("U1")
	svc := NewOrderService(orders, users, zap.NewNop())

	// Simulate losing the race: the order appears between lookup and insert.
	orders.orders["cs_race"] = models.Order{StripeID: "cs_race", TotalAmount: "25"}
	// Force the initial lookup to miss so Reconcile goes down the insert path.
	missOnce := &lookupMissOnce{inner: orders}
	svc = NewOrderService(missOnce, users, zap.NewNop())

	result, err := svc.Reconcile(context.Background(), checkoutEvent("cs_race"))
	assert.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyExists, result.Outcome)
	assert.Equal(t, "cs_race", result.Order.StripeID)
	assert.Equal(t, 1, orders.count())
}

// lookupMissOnce reports not-found on the first FindByStripeID, then defers
// to the wrapped repo. Models the lookup/insert race window.
type lookupMissOnce struct {
	inner  *fakeOrderRepo
	mu     sync.Mutex
	missed bool
}

func (l *lookupMissOnce) FindByStripeID(ctx context.Context, stripeID string) (*models.Order, error) {
	l.mu.Lock()
	first := !l.missed
	l.missed = true
	l.mu.Unlock()
	if first {
		return nil, repository.ErrNotFound
	}
	return l.inner.FindByStripeID(ctx, stripeID)
}

func (l *lookupMissOnce) Insert(ctx context.Context, order *models.Order) error {
	return l.inner.Insert(ctx, order)
}

func (l *lookupMissOnce) EventExists(ctx context.Context, eventID string) (bool, error) {
	return l.inner.EventExists(ctx, eventID)
}

func (l *lookupMissOnce) EnsureIndexes(ctx context.Context) error { return nil }

func TestReconcile_StorageUnavailableSurfacesError(t *testing.T) {
	orders := newFakeOrderRepo("E1")
	orders.findErr = repository.ErrUnavailable
	users := newFakeUserRepo("U1")
	svc := NewOrderService(orders, users, zap.NewNop())

	_, err := svc.Reconcile(context.Background(), checkoutEvent("cs_down"))
	assert.ErrorIs(t, err, repository.ErrUnavailable)
	assert.Equal(t, 0, orders.count())
}

func TestReconcile_ConcurrentDuplicateDelivery(t *testing.T) {
	orders := newFakeOrderRepo("E1")
	users := newFakeUserRepo("U1")
	svc := NewOrderService(orders, users, zap.NewNop())

	const goroutines = 8
	results := make([]ReconcileResult, goroutines)
	errs := make([]error, goroutines)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Reconcile(context.Background(), checkoutEvent("cs_concurrent"))
		}(i)
	}
	wg.Wait()

	created := 0
	for i := 0; i < goroutines; i++ {
		assert.NoError(t, errs[i])
		switch results[i].Outcome {
		case OutcomeCreated:
			created++
		case OutcomeAlreadyExists:
			assert.Equal(t, "cs_concurrent", results[i].Order.StripeID)
		default:
			t.Fatalf("unexpected outcome %v", results[i].Outcome)
		}
	}

	assert.LessOrEqual(t, created, 1)
	assert.Equal(t, 1, orders.count())
}
