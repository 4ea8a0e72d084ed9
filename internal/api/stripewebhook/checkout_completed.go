package stripewebhooks

import (
	"encoding/json"
	"fmt"

	"rental-app/internal/domain/billing"

	"github.com/stripe/stripe-go/v75"
)

const defaultPlanName = "Starter"

func (p *Processor) handleCheckoutCompleted(event stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return fmt.Errorf("failed to parse checkout session: %w", err)
	}

	// Fetch the full session with expansions; the webhook payload alone
	// carries neither the subscription items nor the customer record.
	full, err := p.API.GetCheckoutSession(session.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch expanded checkout session: %w", err)
	}
	if full.Subscription == nil || full.Subscription.ID == "" {
		warnSkip("checkout.session.completed", "session has no subscription")
		return nil
	}

	subData, err := p.API.GetSubscription(full.Subscription.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch subscription: %w", err)
	}

	email := full.CustomerEmail
	if full.CustomerDetails != nil && full.CustomerDetails.Email != "" {
		email = full.CustomerDetails.Email
	}
	metadata := full.Metadata
	if len(subData.Metadata) > 0 {
		metadata = subData.Metadata
	}

	user, err := p.resolveUser(metadata, full.ClientReferenceID, email)
	if err != nil {
		return err
	}
	if user == nil {
		warnSkip("checkout.session.completed", "could not resolve user by metadata or email "+email)
		return nil
	}

	sub, err := p.Store.SubscriptionForUserGateway(user.ID, billing.GatewayStripe)
	if err != nil {
		return err
	}
	if sub == nil {
		sub = &billing.Subscription{
			UserID:      user.ID,
			GatewayName: billing.GatewayStripe,
		}
	}

	planName := defaultPlanName
	var amountCents *int64
	var cycle *string
	if subData.Items != nil && len(subData.Items.Data) > 0 && subData.Items.Data[0].Price != nil {
		price := subData.Items.Data[0].Price

		if plan, err := p.Store.PlanByPriceID(price.ID); err != nil {
			return err
		} else if plan != nil {
			planName = plan.Name
		} else if price.Nickname != "" {
			planName = price.Nickname
		}

		if price.UnitAmount > 0 {
			a := price.UnitAmount
			amountCents = &a
		}
		if price.Recurring != nil {
			cy := string(price.Recurring.Interval)
			cycle = &cy
		}
	}

	subID := full.Subscription.ID
	periodEnd := unixTime(subData.CurrentPeriodEnd)

	sub.GatewaySubscriptionID = &subID
	if full.Customer != nil && full.Customer.ID != "" {
		customerID := full.Customer.ID
		sub.GatewayCustomerID = &customerID
	}
	sub.Status = billing.StatusActive
	sub.PlanName = &planName
	sub.AmountCents = amountCents
	sub.BillingCycle = cycle
	sub.CurrentPeriodEnd = periodEnd

	if err := p.Store.SaveSubscription(sub); err != nil {
		return fmt.Errorf("failed to update subscription after checkout: %w", err)
	}

	ev := billing.NewEvent(user.ID, billing.EventSubscribed,
		fmt.Sprintf("Subscribed to %s", planName))
	ev.PlanName = &planName
	ev.AmountCents = amountCents
	return p.Store.AppendEvent(&ev)
}
