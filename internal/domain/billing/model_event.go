package billing

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionEvent is one row of the append-only billing timeline. Rows are
// only ever created as a side effect of a detected state transition, never
// updated or deleted.
type SubscriptionEvent struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	UserID      uint   `gorm:"not null;index:idx_subscription_events_user_id"`
	EventType   string `gorm:"type:varchar(40);not null"`
	Description string
	PlanName    *string
	AmountCents *int64
	Metadata    string    `gorm:"type:jsonb;default:'{}'"`
	CreatedAt   time.Time `gorm:"index:idx_subscription_events_created_at"`
}

func NewEvent(userID uint, eventType, description string) SubscriptionEvent {
	return SubscriptionEvent{
		ID:          uuid.New().String(),
		UserID:      userID,
		EventType:   eventType,
		Description: description,
		Metadata:    "{}",
	}
}
