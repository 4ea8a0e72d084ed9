package billing

import "time"

// Subscription is the locally stored billing snapshot for one user under one
// gateway. GatewayCustomerID and GatewaySubscriptionID are opaque handles
// scoped to GatewayName and must never cross gateways: switching the active
// gateway creates a fresh row instead of migrating the remote identity.
type Subscription struct {
	ID                    uint    `gorm:"primaryKey"`
	UserID                uint    `gorm:"not null;index:idx_subscriptions_user_id"`
	GatewayName           string  `gorm:"type:varchar(20);not null;index:idx_subscriptions_gateway"`
	GatewayCustomerID     *string `gorm:"column:gateway_customer_id;index:idx_subscriptions_gateway_customer_id"`
	GatewaySubscriptionID *string `gorm:"column:gateway_subscription_id;uniqueIndex:idx_subscriptions_gateway_subscription_id"`

	// Normalized status, the single source of truth for entitlement checks.
	Status string `gorm:"type:varchar(20);not null;default:'none'"`

	// Display metadata snapshotted from the gateway at last sync; may lag
	// the live record between reconciliations.
	PlanName     *string
	BillingCycle *string
	AmountCents  *int64

	CurrentPeriodEnd *time.Time `gorm:"column:current_period_end"`

	// "paid" | "failed"; written only by webhook payment events.
	LastPaymentStatus *string `gorm:"column:last_payment_status"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
