package stripewebhooks

import (
	"encoding/json"
	"testing"
	"time"

	"rental-app/internal/domain/billing"
	"rental-app/internal/domain/plans"
	"rental-app/internal/domain/users"

	"github.com/stripe/stripe-go/v75"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	users  []users.User
	plans  []plans.Plan
	subs   []billing.Subscription
	events []billing.SubscriptionEvent
}

func (f *fakeStore) UserByID(id uint) (*users.User, error) {
	for i := range f.users {
		if f.users[i].ID == id {
			return &f.users[i], nil
		}
	}
	return nil, nil
}

func (f *fakeStore) UserByEmail(email string) (*users.User, error) {
	for i := range f.users {
		if f.users[i].Email == email {
			return &f.users[i], nil
		}
	}
	return nil, nil
}

func (f *fakeStore) SubscriptionForUserGateway(userID uint, gatewayName string) (*billing.Subscription, error) {
	for i := range f.subs {
		if f.subs[i].UserID == userID && f.subs[i].GatewayName == gatewayName {
			sub := f.subs[i]
			return &sub, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) SubscriptionByGatewaySubID(gatewayName, subID string) (*billing.Subscription, error) {
	for i := range f.subs {
		if f.subs[i].GatewayName == gatewayName &&
			f.subs[i].GatewaySubscriptionID != nil && *f.subs[i].GatewaySubscriptionID == subID {
			sub := f.subs[i]
			return &sub, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) SaveSubscription(sub *billing.Subscription) error {
	for i := range f.subs {
		if f.subs[i].ID == sub.ID && sub.ID != 0 {
			f.subs[i] = *sub
			return nil
		}
	}
	sub.ID = uint(len(f.subs) + 1)
	f.subs = append(f.subs, *sub)
	return nil
}

func (f *fakeStore) AppendEvent(ev *billing.SubscriptionEvent) error {
	ev.CreatedAt = time.Now()
	f.events = append(f.events, *ev)
	return nil
}

func (f *fakeStore) PlanByPriceID(priceID string) (*plans.Plan, error) {
	for i := range f.plans {
		if f.plans[i].StripePriceID == priceID {
			return &f.plans[i], nil
		}
	}
	return nil, nil
}

func (f *fakeStore) countEvents(eventType string) int {
	n := 0
	for _, ev := range f.events {
		if ev.EventType == eventType {
			n++
		}
	}
	return n
}

type fakeStripeAPI struct {
	session *stripe.CheckoutSession
	sub     *stripe.Subscription
}

func (f *fakeStripeAPI) GetCheckoutSession(id string) (*stripe.CheckoutSession, error) {
	return f.session, nil
}

func (f *fakeStripeAPI) GetSubscription(id string) (*stripe.Subscription, error) {
	return f.sub, nil
}

func stripeEvent(t *testing.T, eventType stripe.EventType, payload string) stripe.Event {
	t.Helper()
	return stripe.Event{
		Type: eventType,
		Data: &stripe.EventData{Raw: json.RawMessage(payload)},
	}
}

func subPtr(s string) *string { return &s }

func expandedStripeFixtures() (*stripe.CheckoutSession, *stripe.Subscription) {
	session := &stripe.CheckoutSession{
		ID:           "cs_test_1",
		Subscription: &stripe.Subscription{ID: "sub_abc"},
		Customer:     &stripe.Customer{ID: "cus_abc"},
		Metadata:     map[string]string{"user_id": "7"},
	}
	sub := &stripe.Subscription{
		ID:               "sub_abc",
		CurrentPeriodEnd: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC).Unix(),
		Items: &stripe.SubscriptionItemList{
			Data: []*stripe.SubscriptionItem{{
				Price: &stripe.Price{
					ID:         "price_pro_monthly",
					UnitAmount: 19900,
					Recurring:  &stripe.PriceRecurring{Interval: stripe.PriceRecurringIntervalMonth},
				},
			}},
		},
	}
	return session, sub
}

func TestCheckoutCompletedActivatesSubscription(t *testing.T) {
	session, remoteSub := expandedStripeFixtures()
	store := &fakeStore{
		users: []users.User{{ID: 7, Email: "renter@example.com"}},
		plans: []plans.Plan{{ID: 1, Name: "Pro", StripePriceID: "price_pro_monthly", AmountCents: 19900}},
	}
	p := &Processor{Store: store, API: &fakeStripeAPI{session: session, sub: remoteSub}}

	err := p.Process(stripeEvent(t, "checkout.session.completed", `{"id":"cs_test_1"}`))
	require.NoError(t, err)

	require.Len(t, store.subs, 1)
	got := store.subs[0]
	assert.Equal(t, uint(7), got.UserID)
	assert.Equal(t, billing.GatewayStripe, got.GatewayName)
	assert.Equal(t, billing.StatusActive, got.Status)
	require.NotNil(t, got.GatewaySubscriptionID)
	assert.Equal(t, "sub_abc", *got.GatewaySubscriptionID)
	require.NotNil(t, got.GatewayCustomerID)
	assert.Equal(t, "cus_abc", *got.GatewayCustomerID)
	require.NotNil(t, got.PlanName)
	assert.Equal(t, "Pro", *got.PlanName)
	require.NotNil(t, got.AmountCents)
	assert.Equal(t, int64(19900), *got.AmountCents)
	require.NotNil(t, got.BillingCycle)
	assert.Equal(t, "month", *got.BillingCycle)
	require.NotNil(t, got.CurrentPeriodEnd)

	require.Len(t, store.events, 1)
	assert.Equal(t, billing.EventSubscribed, store.events[0].EventType)
}

func TestCheckoutCompletedDuplicateDeliveryConverges(t *testing.T) {
	session, remoteSub := expandedStripeFixtures()
	store := &fakeStore{
		users: []users.User{{ID: 7, Email: "renter@example.com"}},
		plans: []plans.Plan{{ID: 1, Name: "Pro", StripePriceID: "price_pro_monthly", AmountCents: 19900}},
	}
	p := &Processor{Store: store, API: &fakeStripeAPI{session: session, sub: remoteSub}}

	event := stripeEvent(t, "checkout.session.completed", `{"id":"cs_test_1"}`)
	require.NoError(t, p.Process(event))
	first := store.subs[0]

	require.NoError(t, p.Process(event))

	// The second delivery must not create a second row and must land on
	// the same state.
	require.Len(t, store.subs, 1)
	assert.Equal(t, first.Status, store.subs[0].Status)
	assert.Equal(t, *first.GatewaySubscriptionID, *store.subs[0].GatewaySubscriptionID)
	assert.Equal(t, *first.PlanName, *store.subs[0].PlanName)
}

func TestCheckoutCompletedEmailFallback(t *testing.T) {
	session, remoteSub := expandedStripeFixtures()
	session.Metadata = nil
	session.CustomerDetails = &stripe.CheckoutSessionCustomerDetails{Email: "renter@example.com"}
	store := &fakeStore{
		users: []users.User{{ID: 9, Email: "renter@example.com"}},
	}
	p := &Processor{Store: store, API: &fakeStripeAPI{session: session, sub: remoteSub}}

	err := p.Process(stripeEvent(t, "checkout.session.completed", `{"id":"cs_test_1"}`))
	require.NoError(t, err)

	require.Len(t, store.subs, 1)
	assert.Equal(t, uint(9), store.subs[0].UserID)
}

func TestCheckoutCompletedUnresolvableUserIsSkipped(t *testing.T) {
	session, remoteSub := expandedStripeFixtures()
	session.Metadata = nil
	session.CustomerEmail = "ghost@example.com"
	store := &fakeStore{}
	p := &Processor{Store: store, API: &fakeStripeAPI{session: session, sub: remoteSub}}

	err := p.Process(stripeEvent(t, "checkout.session.completed", `{"id":"cs_test_1"}`))
	require.NoError(t, err)
	assert.Empty(t, store.subs)
	assert.Empty(t, store.events)
}

func TestSubscriptionUpdatedCancellationScheduled(t *testing.T) {
	store := &fakeStore{
		subs: []billing.Subscription{{
			ID:                    1,
			UserID:                7,
			GatewayName:           billing.GatewayStripe,
			GatewaySubscriptionID: subPtr("sub_abc"),
			Status:                billing.StatusActive,
			PlanName:              subPtr("Pro"),
		}},
	}
	p := &Processor{Store: store}

	event := stripeEvent(t, "customer.subscription.updated",
		`{"id":"sub_abc","status":"active","cancel_at_period_end":true,"current_period_end":1790812800}`)
	event.Data.PreviousAttributes = map[string]interface{}{"cancel_at_period_end": false}

	require.NoError(t, p.Process(event))
	assert.Equal(t, 1, store.countEvents(billing.EventCancellationScheduled))
	assert.Equal(t, billing.StatusActive, store.subs[0].Status)
}

func TestSubscriptionUpdatedCancellationReverted(t *testing.T) {
	store := &fakeStore{
		subs: []billing.Subscription{{
			ID:                    1,
			UserID:                7,
			GatewayName:           billing.GatewayStripe,
			GatewaySubscriptionID: subPtr("sub_abc"),
			Status:                billing.StatusActive,
		}},
	}
	p := &Processor{Store: store}

	event := stripeEvent(t, "customer.subscription.updated",
		`{"id":"sub_abc","status":"active","cancel_at_period_end":false}`)
	event.Data.PreviousAttributes = map[string]interface{}{"cancel_at_period_end": true}

	require.NoError(t, p.Process(event))
	assert.Equal(t, 1, store.countEvents(billing.EventReactivated))
}

func TestSubscriptionUpdatedWithoutFlipStaysQuiet(t *testing.T) {
	store := &fakeStore{
		subs: []billing.Subscription{{
			ID:                    1,
			UserID:                7,
			GatewayName:           billing.GatewayStripe,
			GatewaySubscriptionID: subPtr("sub_abc"),
			Status:                billing.StatusActive,
		}},
	}
	p := &Processor{Store: store}

	// Status refresh without previous_attributes: persist, no event.
	event := stripeEvent(t, "customer.subscription.updated",
		`{"id":"sub_abc","status":"past_due"}`)
	require.NoError(t, p.Process(event))

	assert.Equal(t, billing.StatusPastDue, store.subs[0].Status)
	assert.Empty(t, store.events)
}

func TestSubscriptionDeletedDuplicateDelivery(t *testing.T) {
	store := &fakeStore{
		subs: []billing.Subscription{{
			ID:                    1,
			UserID:                7,
			GatewayName:           billing.GatewayStripe,
			GatewaySubscriptionID: subPtr("sub_abc"),
			Status:                billing.StatusActive,
		}},
	}
	p := &Processor{Store: store}

	event := stripeEvent(t, "customer.subscription.deleted", `{"id":"sub_abc","status":"canceled"}`)
	require.NoError(t, p.Process(event))
	require.NoError(t, p.Process(event))

	assert.Equal(t, billing.StatusCanceled, store.subs[0].Status)
	assert.Equal(t, 1, store.countEvents(billing.EventCanceled))
}

func TestInvoicePaymentSucceededRenewalCycle(t *testing.T) {
	store := &fakeStore{
		subs: []billing.Subscription{{
			ID:                    1,
			UserID:                7,
			GatewayName:           billing.GatewayStripe,
			GatewaySubscriptionID: subPtr("sub_abc"),
			Status:                billing.StatusPastDue,
			PlanName:              subPtr("Pro"),
		}},
	}
	p := &Processor{Store: store}

	event := stripeEvent(t, "invoice.payment_succeeded",
		`{"id":"in_1","subscription":"sub_abc","billing_reason":"subscription_cycle","amount_paid":19900}`)
	require.NoError(t, p.Process(event))

	got := store.subs[0]
	assert.Equal(t, billing.StatusActive, got.Status)
	require.NotNil(t, got.LastPaymentStatus)
	assert.Equal(t, "paid", *got.LastPaymentStatus)

	require.Equal(t, 1, store.countEvents(billing.EventPaymentSucceeded))
	ev := store.events[0]
	require.NotNil(t, ev.AmountCents)
	assert.Equal(t, int64(19900), *ev.AmountCents)
}

func TestInvoicePaymentSucceededFirstInvoiceIsSkipped(t *testing.T) {
	store := &fakeStore{
		subs: []billing.Subscription{{
			ID:                    1,
			UserID:                7,
			GatewayName:           billing.GatewayStripe,
			GatewaySubscriptionID: subPtr("sub_abc"),
			Status:                billing.StatusActive,
		}},
	}
	p := &Processor{Store: store}

	// subscription_create invoices are already covered by checkout.
	event := stripeEvent(t, "invoice.payment_succeeded",
		`{"id":"in_1","subscription":"sub_abc","billing_reason":"subscription_create","amount_paid":19900}`)
	require.NoError(t, p.Process(event))

	assert.Empty(t, store.events)
	assert.Nil(t, store.subs[0].LastPaymentStatus)
}

func TestInvoicePaymentFailed(t *testing.T) {
	store := &fakeStore{
		subs: []billing.Subscription{{
			ID:                    1,
			UserID:                7,
			GatewayName:           billing.GatewayStripe,
			GatewaySubscriptionID: subPtr("sub_abc"),
			Status:                billing.StatusActive,
			PlanName:              subPtr("Pro"),
		}},
	}
	p := &Processor{Store: store}

	event := stripeEvent(t, "invoice.payment_failed",
		`{"id":"in_2","subscription":"sub_abc","amount_due":19900}`)
	require.NoError(t, p.Process(event))

	got := store.subs[0]
	assert.Equal(t, billing.StatusPastDue, got.Status)
	require.NotNil(t, got.LastPaymentStatus)
	assert.Equal(t, "failed", *got.LastPaymentStatus)

	require.Equal(t, 1, store.countEvents(billing.EventPaymentFailed))
	ev := store.events[0]
	require.NotNil(t, ev.AmountCents)
	assert.Equal(t, int64(19900), *ev.AmountCents)
}

func TestInvoiceWithoutLocalRowIsSkipped(t *testing.T) {
	store := &fakeStore{}
	p := &Processor{Store: store}

	event := stripeEvent(t, "invoice.payment_failed",
		`{"id":"in_3","subscription":"sub_unknown","amount_due":500}`)
	require.NoError(t, p.Process(event))
	assert.Empty(t, store.events)
}

func TestUnknownEventTypeIsIgnored(t *testing.T) {
	store := &fakeStore{}
	p := &Processor{Store: store}

	err := p.Process(stripeEvent(t, "charge.refunded", `{"id":"ch_1"}`))
	require.NoError(t, err)
	assert.Empty(t, store.subs)
	assert.Empty(t, store.events)
}

func TestResolveUserClientReference(t *testing.T) {
	store := &fakeStore{users: []users.User{{ID: 42, Email: "owner@example.com"}}}
	p := &Processor{Store: store}

	u, err := p.resolveUser(nil, "42", "")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, uint(42), u.ID)
}
