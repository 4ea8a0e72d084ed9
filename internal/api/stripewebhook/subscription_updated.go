package stripewebhooks

import (
	"encoding/json"
	"fmt"
	"time"

	"rental-app/internal/domain/billing"

	"github.com/stripe/stripe-go/v75"
)

func (p *Processor) handleSubscriptionUpdated(event stripe.Event) error {
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
		warnSkip("customer.subscription.updated", "no local row for "+remote.ID)
		return nil
	}

	sub.Status = billing.NormalizeGatewayStatus(billing.GatewayStripe, string(remote.Status))
	sub.CurrentPeriodEnd = unixTime(remote.CurrentPeriodEnd)
	if err := p.Store.SaveSubscription(sub); err != nil {
		return err
	}

	// previous_attributes tells us whether cancel_at_period_end actually
	// flipped in this delivery; only a flip is a timeline transition.
	prev, flipped := event.Data.PreviousAttributes["cancel_at_period_end"]
	if !flipped {
		return nil
	}
	wasScheduled, _ := prev.(bool)

	if remote.CancelAtPeriodEnd && !wasScheduled {
		ev := billing.NewEvent(sub.UserID, billing.EventCancellationScheduled,
			"Cancellation scheduled for the end of the current period")
		ev.PlanName = sub.PlanName
		return p.Store.AppendEvent(&ev)
	}
	if !remote.CancelAtPeriodEnd && wasScheduled {
		ev := billing.NewEvent(sub.UserID, billing.EventReactivated,
			"Scheduled cancellation reverted, subscription continues")
		ev.PlanName = sub.PlanName
		return p.Store.AppendEvent(&ev)
	}
	return nil
}

// findSubscription locates the local row: metadata user id first, then the
// remote subscription id.
func (p *Processor) findSubscription(remoteSubID string, metadata map[string]string) (*billing.Subscription, error) {
	if userID := userIDFromMetadata(metadata); userID != 0 {
		sub, err := p.Store.SubscriptionForUserGateway(userID, billing.GatewayStripe)
		if err != nil || sub != nil {
			return sub, err
		}
	}
	return p.Store.SubscriptionByGatewaySubID(billing.GatewayStripe, remoteSubID)
}

func unixTime(ts int64) *time.Time {
	if ts == 0 {
		return nil
	}
	t := time.Unix(ts, 0)
	return &t
}
