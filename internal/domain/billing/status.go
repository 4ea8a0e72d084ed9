package billing

import "strings"

const (
	GatewayStripe = "stripe"
	GatewayASAAS  = "asaas"
)

// Normalized subscription status values.
const (
	StatusNone       = "none"
	StatusIncomplete = "incomplete"
	StatusTrialing   = "trialing"
	StatusActive     = "active"
	StatusPastDue    = "past_due"
	StatusCanceled   = "canceled"
)

// Timeline event types.
const (
	EventSubscribed            = "subscribed"
	EventReactivated           = "reactivated"
	EventCanceled              = "canceled"
	EventCancellationScheduled = "cancellation_scheduled"
	EventPaymentSucceeded      = "payment_succeeded"
	EventPaymentFailed         = "payment_failed"
)

// NormalizeGatewayStatus maps a gateway-native status string onto the
// normalized enum. The mapping rules for both gateways live here so they
// stay auditable in one place.
//
// Stripe's vocabulary maps almost directly. ASAAS only distinguishes ACTIVE
// from everything else, so anything that isn't ACTIVE (case-insensitive)
// coerces to canceled.
func NormalizeGatewayStatus(gatewayName string, raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return StatusNone
	}

	if gatewayName == GatewayASAAS {
		if s == "active" {
			return StatusActive
		}
		return StatusCanceled
	}

	switch s {
	case "active":
		return StatusActive
	case "trialing":
		return StatusTrialing
	case "past_due", "unpaid":
		return StatusPastDue
	case "canceled", "incomplete_expired":
		return StatusCanceled
	case "incomplete":
		return StatusIncomplete
	default:
		return s
	}
}

// ActiveSubscription picks the row billing decisions should act on when a
// user has rows under more than one gateway (e.g. after a provider switch).
// Priority: active and matching the configured gateway > any active >
// trialing > most recently updated.
func ActiveSubscription(rows []Subscription, configuredGateway string) *Subscription {
	if len(rows) == 0 {
		return nil
	}

	for i := range rows {
		if rows[i].Status == StatusActive && rows[i].GatewayName == configuredGateway {
			return &rows[i]
		}
	}
	for i := range rows {
		if rows[i].Status == StatusActive {
			return &rows[i]
		}
	}
	for i := range rows {
		if rows[i].Status == StatusTrialing {
			return &rows[i]
		}
	}

	best := &rows[0]
	for i := range rows {
		if rows[i].UpdatedAt.After(best.UpdatedAt) {
			best = &rows[i]
		}
	}
	return best
}
