package stripewebhooks

import (
	"errors"

	"rental-app/internal/domain/billing"
	"rental-app/internal/domain/plans"
	"rental-app/internal/domain/users"

	"gorm.io/gorm"
)

// Store is the persistence surface the event processor mutates through.
// Lookup methods return (nil, nil) on not-found so callers can treat a miss
// as a non-fatal skip.
type Store interface {
	UserByID(id uint) (*users.User, error)
	UserByEmail(email string) (*users.User, error)
	SubscriptionForUserGateway(userID uint, gatewayName string) (*billing.Subscription, error)
	SubscriptionByGatewaySubID(gatewayName, subID string) (*billing.Subscription, error)
	SaveSubscription(sub *billing.Subscription) error
	AppendEvent(ev *billing.SubscriptionEvent) error
	PlanByPriceID(priceID string) (*plans.Plan, error)
}

type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) UserByID(id uint) (*users.User, error) {
	var u users.User
	err := s.DB.Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *GormStore) UserByEmail(email string) (*users.User, error) {
	var u users.User
	err := s.DB.Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *GormStore) SubscriptionForUserGateway(userID uint, gatewayName string) (*billing.Subscription, error) {
	var sub billing.Subscription
	err := s.DB.Where("user_id = ? AND gateway_name = ?", userID, gatewayName).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *GormStore) SubscriptionByGatewaySubID(gatewayName, subID string) (*billing.Subscription, error) {
	var sub billing.Subscription
	err := s.DB.Where("gateway_name = ? AND gateway_subscription_id = ?", gatewayName, subID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *GormStore) SaveSubscription(sub *billing.Subscription) error {
	return s.DB.Save(sub).Error
}

func (s *GormStore) AppendEvent(ev *billing.SubscriptionEvent) error {
	return s.DB.Create(ev).Error
}

func (s *GormStore) PlanByPriceID(priceID string) (*plans.Plan, error) {
	var p plans.Plan
	err := s.DB.Where("stripe_price_id = ?", priceID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
