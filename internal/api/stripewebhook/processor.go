package stripewebhooks

import (
	"fmt"
	"strconv"

	"rental-app/internal/domain/users"

	"github.com/stripe/stripe-go/v75"
	"gorm.io/gorm"
)

// Processor maps asynchronous Stripe push events onto subscription state
// mutations plus timeline entries. Deliveries may arrive out of order or
// more than once; every mutation is idempotent on the resulting state, so a
// duplicate produces at most one harmless extra audit row.
//
//	checkout.session.completed        -> subscription active, "subscribed"
//	customer.subscription.updated     -> cancel_at_period_end newly set:   "cancellation_scheduled"
//	                                     cancel_at_period_end newly clear: "reactivated"
//	customer.subscription.deleted     -> status canceled, "canceled"
//	invoice.payment_succeeded (cycle) -> last payment paid, "payment_succeeded"
//	invoice.payment_failed            -> status past_due, "payment_failed"
type Processor struct {
	Store Store
	API   StripeAPI
}

func NewProcessor(db *gorm.DB) *Processor {
	return &Processor{
		Store: NewGormStore(db),
		API:   liveStripeAPI{},
	}
}

// Process dispatches one verified event. Unknown event types are a silent
// skip, not an error: the receiver still acks them.
func (p *Processor) Process(event stripe.Event) error {
	switch event.Type {
	case "checkout.session.completed":
		return p.handleCheckoutCompleted(event)
	case "customer.subscription.updated":
		return p.handleSubscriptionUpdated(event)
	case "customer.subscription.deleted":
		return p.handleSubscriptionDeleted(event)
	case "invoice.payment_succeeded":
		return p.handleInvoicePaymentSucceeded(event)
	case "invoice.payment_failed":
		return p.handleInvoicePaymentFailed(event)
	default:
		return nil
	}
}

func userIDFromMetadata(md map[string]string) uint {
	if md == nil {
		return 0
	}
	s := md["user_id"]
	if s == "" {
		return 0
	}
	uid, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return uint(uid)
}

// resolveUser identifies the tenant an event belongs to: explicit metadata
// first, then the checkout client reference, then a best-effort match on the
// billing email. The email path is a compatibility fallback for flows that
// did not propagate metadata; when it also misses, the caller logs and skips
// rather than failing the delivery.
func (p *Processor) resolveUser(metadata map[string]string, clientRef, email string) (*users.User, error) {
	if id := userIDFromMetadata(metadata); id != 0 {
		return p.Store.UserByID(id)
	}
	if clientRef != "" {
		if id, err := strconv.ParseUint(clientRef, 10, 64); err == nil {
			return p.Store.UserByID(uint(id))
		}
	}
	if email != "" {
		return p.Store.UserByEmail(email)
	}
	return nil, nil
}

func warnSkip(event string, reason string) {
	fmt.Printf("⚠️ stripe webhook %s skipped: %s\n", event, reason)
}
