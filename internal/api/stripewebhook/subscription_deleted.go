package stripewebhooks

import (
	"encoding/json"
	"fmt"

	"rental-app/internal/domain/billing"

	"github.com/stripe/stripe-go/v75"
)

func (p *Processor) handleSubscriptionDeleted(event stripe.Event) error {
	var remote stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &remote); err != nil {
		return fmt.Errorf("failed to parse subscription: %w", err)
	}
	if remote.ID == "" {
		return nil
	}

	sub, err := p.findSubscription(remote.ID, remote.Metadata)
	if err != nil {
		return err
	}
	if sub == nil {
		warnSkip("customer.subscription.deleted", "no local row for "+remote.ID)
		return nil
	}

	alreadyCanceled := sub.Status == billing.StatusCanceled

	sub.Status = billing.StatusCanceled
	sub.CurrentPeriodEnd = unixTime(remote.CurrentPeriodEnd)
	if err := p.Store.SaveSubscription(sub); err != nil {
		return err
	}

	// Re-applying "canceled" on a duplicate delivery changes nothing;
	// skip the duplicate timeline row as well.
	if alreadyCanceled {
		return nil
	}

	ev := billing.NewEvent(sub.UserID, billing.EventCanceled, "Subscription canceled")
	ev.PlanName = sub.PlanName
	return p.Store.AppendEvent(&ev)
}
