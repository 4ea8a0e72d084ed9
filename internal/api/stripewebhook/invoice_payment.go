package stripewebhooks

import (
	"encoding/json"
	"fmt"

	"rental-app/internal/domain/billing"

	"github.com/stripe/stripe-go/v75"
)

const (
	paymentStatusPaid   = "paid"
	paymentStatusFailed = "failed"
)

func (p *Processor) handleInvoicePaymentSucceeded(event stripe.Event) error {
	inv, sub, err := p.invoiceSubscription(event)
	if err != nil || sub == nil {
		return err
	}

	// The first invoice is already covered by checkout.session.completed;
	// only renewal cycles mark a payment here.
	if inv.BillingReason != stripe.InvoiceBillingReasonSubscriptionCycle {
		return nil
	}

	paid := paymentStatusPaid
	sub.LastPaymentStatus = &paid
	sub.Status = billing.StatusActive
	if err := p.Store.SaveSubscription(sub); err != nil {
		return err
	}

	amount := inv.AmountPaid
	ev := billing.NewEvent(sub.UserID, billing.EventPaymentSucceeded, "Recurring payment received")
	ev.PlanName = sub.PlanName
	ev.AmountCents = &amount
	return p.Store.AppendEvent(&ev)
}

func (p *Processor) handleInvoicePaymentFailed(event stripe.Event) error {
	inv, sub, err := p.invoiceSubscription(event)
	if err != nil || sub == nil {
		return err
	}

	failed := paymentStatusFailed
	sub.LastPaymentStatus = &failed
	sub.Status = billing.StatusPastDue
	if err := p.Store.SaveSubscription(sub); err != nil {
		return err
	}

	amount := inv.AmountDue
	ev := billing.NewEvent(sub.UserID, billing.EventPaymentFailed, "Payment failed")
	ev.PlanName = sub.PlanName
	ev.AmountCents = &amount
	return p.Store.AppendEvent(&ev)
}

func (p *Processor) invoiceSubscription(event stripe.Event) (*stripe.Invoice, *billing.Subscription, error) {
	var inv stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
		return nil, nil, fmt.Errorf("failed to parse invoice: %w", err)
	}
	if inv.Subscription == nil || inv.Subscription.ID == "" {
		warnSkip(string(event.Type), "invoice has no subscription")
		return &inv, nil, nil
	}

	sub, err := p.Store.SubscriptionByGatewaySubID(billing.GatewayStripe, inv.Subscription.ID)
	if err != nil {
		return nil, nil, err
	}
	if sub == nil {
		warnSkip(string(event.Type), "no local row for "+inv.Subscription.ID)
	}
	return &inv, sub, nil
}
