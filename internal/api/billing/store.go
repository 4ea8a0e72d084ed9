package billing

import (
	"errors"

	domain "rental-app/internal/domain/billing"

	"gorm.io/gorm"
)

// SubscriptionStore is the narrow persistence surface the reconciler and the
// billing handlers need. The gorm implementation lives below; tests use an
// in-memory fake.
type SubscriptionStore interface {
	SubscriptionsForUser(userID uint) ([]domain.Subscription, error)
	// LatestEventType returns the event type at the tail of the user's
	// timeline, or "" when the ledger is empty.
	LatestEventType(userID uint) (string, error)
	EventsForUser(userID uint, limit int) ([]domain.SubscriptionEvent, error)
	SaveSubscription(sub *domain.Subscription) error
	AppendEvent(ev *domain.SubscriptionEvent) error
}

type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) SubscriptionsForUser(userID uint) ([]domain.Subscription, error) {
	var rows []domain.Subscription
	err := s.DB.Where("user_id = ?", userID).Order("updated_at DESC").Find(&rows).Error
	return rows, err
}

func (s *GormStore) LatestEventType(userID uint) (string, error) {
	var ev domain.SubscriptionEvent
	err := s.DB.Where("user_id = ?", userID).Order("created_at DESC").First(&ev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return ev.EventType, nil
}

func (s *GormStore) EventsForUser(userID uint, limit int) ([]domain.SubscriptionEvent, error) {
	var rows []domain.SubscriptionEvent
	err := s.DB.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

func (s *GormStore) SaveSubscription(sub *domain.Subscription) error {
	return s.DB.Save(sub).Error
}

func (s *GormStore) AppendEvent(ev *domain.SubscriptionEvent) error {
	return s.DB.Create(ev).Error
}
