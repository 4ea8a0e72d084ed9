package gateway

import (
	"errors"
	"time"

	"rental-app/config"
	"rental-app/internal/domain/billing"

	"github.com/stripe/stripe-go/v75"
	checkoutsession "github.com/stripe/stripe-go/v75/checkout/session"
	"github.com/stripe/stripe-go/v75/customer"
	"github.com/stripe/stripe-go/v75/invoice"
	"github.com/stripe/stripe-go/v75/subscription"
)

// StripeAdapter implements Provider against the Stripe API using
// subscription-mode checkout sessions keyed by price id.
type StripeAdapter struct{}

func NewStripeAdapter() (*StripeAdapter, error) {
	if config.STRIPE_SECRET_KEY == "" {
		return nil, &ConfigError{Key: "STRIPE_SECRET_KEY"}
	}
	stripe.Key = config.STRIPE_SECRET_KEY
	return &StripeAdapter{}, nil
}

func (a *StripeAdapter) Name() string {
	return billing.GatewayStripe
}

func (a *StripeAdapter) CreateCustomer(p CustomerParams) (string, error) {
	params := &stripe.CustomerParams{
		Email:    stripe.String(p.Email),
		Metadata: p.Metadata,
	}
	if p.Name != "" {
		params.Name = stripe.String(p.Name)
	}

	cus, err := customer.New(params)
	if err != nil {
		return "", stripeError(err)
	}
	return cus.ID, nil
}

func (a *StripeAdapter) CreateCheckout(p CheckoutParams) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer:   stripe.String(p.CustomerID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(p.PriceID), Quantity: stripe.Int64(1)},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: p.Metadata,
		},
	}
	if ref := p.Metadata["user_id"]; ref != "" {
		params.ClientReferenceID = stripe.String(ref)
	}

	s, err := checkoutsession.New(params)
	if err != nil {
		return nil, &CheckoutError{Reason: stripeError(err).Error()}
	}

	return &CheckoutSession{
		URL:       s.URL,
		SessionID: s.ID,
		Gateway:   billing.GatewayStripe,
	}, nil
}

func (a *StripeAdapter) CancelSubscription(subscriptionID string) error {
	_, err := subscription.Cancel(subscriptionID, nil)
	if err != nil {
		// Already gone counts as canceled.
		var se *stripe.Error
		if errors.As(err, &se) && se.Code == stripe.ErrorCodeResourceMissing {
			return nil
		}
		return stripeError(err)
	}
	return nil
}

func (a *StripeAdapter) GetSubscriptionStatus(subscriptionID string) (*SubscriptionSnapshot, error) {
	sub, err := subscription.Get(subscriptionID, nil)
	if err != nil {
		return nil, stripeError(err)
	}

	snap := &SubscriptionSnapshot{
		Gateway:           billing.GatewayStripe,
		Status:            string(sub.Status),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		CurrentPeriodEnd:  time.Unix(sub.CurrentPeriodEnd, 0),
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		price := sub.Items.Data[0].Price
		snap.PriceID = price.ID
		snap.AmountCents = price.UnitAmount
		snap.PlanName = price.Nickname
		if price.Recurring != nil {
			snap.Cycle = string(price.Recurring.Interval)
		}
	}
	return snap, nil
}

func (a *StripeAdapter) GetInvoices(customerID string) ([]Invoice, error) {
	params := &stripe.InvoiceListParams{
		Customer: stripe.String(customerID),
	}
	params.Limit = stripe.Int64(invoicePageSize)

	var out []Invoice
	it := invoice.List(params)
	for it.Next() {
		in := it.Invoice()

		desc := in.Number
		if in.Lines != nil && len(in.Lines.Data) > 0 && in.Lines.Data[0].Description != "" {
			desc = in.Lines.Data[0].Description
		}

		out = append(out, Invoice{
			ID:          in.ID,
			AmountCents: in.AmountDue,
			Created:     time.Unix(in.Created, 0),
			Description: desc,
			PDFURL:      in.InvoicePDF,
			Status:      string(in.Status),
		})
	}
	if err := it.Err(); err != nil {
		return nil, stripeError(err)
	}
	return out, nil
}

func stripeError(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		return &GatewayError{
			Gateway:    billing.GatewayStripe,
			StatusCode: se.HTTPStatusCode,
			Message:    se.Msg,
		}
	}
	return &GatewayError{Gateway: billing.GatewayStripe, Message: err.Error()}
}
