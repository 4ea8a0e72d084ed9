package gateway

import "time"

// Provider is the uniform capability set every gateway adapter implements.
// Snapshots and invoices come back in gateway-native shape; normalization is
// the reconciler's job, so mapping edge cases aren't lost to a premature
// abstraction inside the adapters.
type Provider interface {
	Name() string

	// CreateCustomer creates a new billing identity at the gateway.
	// Idempotency is the caller's responsibility: check for an existing
	// customer id under the same gateway before calling.
	CreateCustomer(p CustomerParams) (string, error)

	// CreateCheckout opens a hosted checkout/payment-link flow.
	CreateCheckout(p CheckoutParams) (*CheckoutSession, error)

	// CancelSubscription requests cancellation at the gateway. A not-found
	// subscription is treated as already canceled so cancellation stays
	// idempotent.
	CancelSubscription(subscriptionID string) error

	// GetSubscriptionStatus fetches the live, gateway-native status.
	GetSubscriptionStatus(subscriptionID string) (*SubscriptionSnapshot, error)

	// GetInvoices lists recent billing records, newest first, capped at
	// invoicePageSize.
	GetInvoices(customerID string) ([]Invoice, error)
}

const invoicePageSize = 10

type CustomerParams struct {
	Email    string
	Name     string
	TaxID    string // CPF/CNPJ; first-class field for ASAAS, ignored by Stripe
	Metadata map[string]string
}

type CheckoutParams struct {
	CustomerID string
	PriceID    string
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

type CheckoutSession struct {
	URL       string
	SessionID string
	Gateway   string
}

// SubscriptionSnapshot carries the gateway-native view of a subscription.
// Status keeps the gateway's own vocabulary ("active" for Stripe, "ACTIVE"
// for ASAAS); callers normalize it.
type SubscriptionSnapshot struct {
	Gateway           string
	Status            string
	CancelAtPeriodEnd bool
	CurrentPeriodEnd  time.Time
	PriceID           string
	PlanName          string
	AmountCents       int64
	Cycle             string
}

// Invoice is a gateway-native billing record.
type Invoice struct {
	ID          string
	AmountCents int64
	Created     time.Time
	Description string
	PDFURL      string
	Status      string
}
