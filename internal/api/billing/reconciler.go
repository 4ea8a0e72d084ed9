package billing

import (
	"fmt"
	"time"

	domain "rental-app/internal/domain/billing"
	"rental-app/internal/infra/gateway"
)

// ProviderResolver hands the reconciler an adapter for a given gateway name.
// Production wiring uses gateway.GetProvider; tests plug in fakes.
type ProviderResolver func(name string) (gateway.Provider, error)

// Reconciler syncs a user's stored subscription snapshot against the live
// gateway state. It always refreshes the snapshot but only appends a ledger
// event on a genuine transition, so repeated polls stay quiet.
type Reconciler struct {
	Store             SubscriptionStore
	Providers         ProviderResolver
	ConfiguredGateway string
}

type BillingInfo struct {
	PlanName           string       `json:"planName"`
	SubscriptionStatus string       `json:"subscriptionStatus"`
	NextBillingDate    *string      `json:"nextBillingDate"`
	Invoices           []InvoiceDTO `json:"invoices"`
	Events             []EventDTO   `json:"events"`
}

const eventPageSize = 20

// Refresh polls the gateway owning the user's active subscription row, folds
// the normalized result back into storage and returns the display view.
func (r *Reconciler) Refresh(userID uint) (*BillingInfo, error) {
	rows, err := r.Store.SubscriptionsForUser(userID)
	if err != nil {
		return nil, err
	}

	sub := domain.ActiveSubscription(rows, r.ConfiguredGateway)
	if sub == nil {
		events, err := r.loadEvents(userID)
		if err != nil {
			return nil, err
		}
		return &BillingInfo{
			SubscriptionStatus: domain.StatusNone,
			Invoices:           []InvoiceDTO{},
			Events:             events,
		}, nil
	}

	var invoices []InvoiceDTO

	// A row without both remote handles has nothing to poll yet (checkout
	// was started but never completed); serve the stored snapshot.
	if sub.GatewayCustomerID != nil && *sub.GatewayCustomerID != "" &&
		sub.GatewaySubscriptionID != nil && *sub.GatewaySubscriptionID != "" {
		provider, err := r.Providers(sub.GatewayName)
		if err != nil {
			return nil, err
		}

		snap, err := provider.GetSubscriptionStatus(*sub.GatewaySubscriptionID)
		if err != nil {
			return nil, err
		}

		if err := r.applySnapshot(sub, snap); err != nil {
			return nil, err
		}

		raw, err := provider.GetInvoices(*sub.GatewayCustomerID)
		if err != nil {
			return nil, err
		}
		for _, in := range raw {
			invoices = append(invoices, normalizeInvoice(in))
		}
	}

	events, err := r.loadEvents(userID)
	if err != nil {
		return nil, err
	}

	info := &BillingInfo{
		SubscriptionStatus: sub.Status,
		Invoices:           invoices,
		Events:             events,
	}
	if info.Invoices == nil {
		info.Invoices = []InvoiceDTO{}
	}
	if sub.PlanName != nil {
		info.PlanName = *sub.PlanName
	}
	if sub.CurrentPeriodEnd != nil {
		d := sub.CurrentPeriodEnd.UTC().Format(time.RFC3339)
		info.NextBillingDate = &d
	}
	return info, nil
}

// applySnapshot normalizes the gateway-native snapshot, detects lifecycle
// transitions against the ledger tail and persists the refreshed fields.
// Transitions are derived from the most recent event type, not from the
// stored row, so duplicate polls are idempotent.
func (r *Reconciler) applySnapshot(sub *domain.Subscription, snap *gateway.SubscriptionSnapshot) error {
	status := domain.NormalizeGatewayStatus(sub.GatewayName, snap.Status)

	lastEvent, err := r.Store.LatestEventType(sub.UserID)
	if err != nil {
		return err
	}

	var transition *domain.SubscriptionEvent
	switch {
	case lastEvent == domain.EventCanceled && status == domain.StatusActive:
		ev := domain.NewEvent(sub.UserID, domain.EventReactivated,
			fmt.Sprintf("Subscription reactivated (%s)", snap.PlanName))
		transition = &ev
	case status == domain.StatusCanceled && lastEvent != domain.EventCanceled:
		ev := domain.NewEvent(sub.UserID, domain.EventCanceled, "Subscription canceled")
		transition = &ev
	}

	sub.Status = status
	if !snap.CurrentPeriodEnd.IsZero() {
		end := snap.CurrentPeriodEnd
		sub.CurrentPeriodEnd = &end
	}
	if snap.PlanName != "" {
		name := snap.PlanName
		sub.PlanName = &name
	}
	if snap.Cycle != "" {
		cycle := snap.Cycle
		sub.BillingCycle = &cycle
	}
	if snap.AmountCents > 0 {
		cents := snap.AmountCents
		sub.AmountCents = &cents
	}

	if err := r.Store.SaveSubscription(sub); err != nil {
		return err
	}

	if transition != nil {
		transition.PlanName = sub.PlanName
		transition.AmountCents = sub.AmountCents
		if err := r.Store.AppendEvent(transition); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reconciler) loadEvents(userID uint) ([]EventDTO, error) {
	rows, err := r.Store.EventsForUser(userID, eventPageSize)
	if err != nil {
		return nil, err
	}
	out := make([]EventDTO, 0, len(rows))
	for _, ev := range rows {
		out = append(out, EventDTO{
			ID:          ev.ID,
			Type:        "event",
			EventType:   ev.EventType,
			Description: ev.Description,
			Created:     ev.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out, nil
}
