package plans

type Plan struct {
	ID            uint `gorm:"primaryKey"`
	Name          string
	AmountCents   int64
	Currency      string
	StripePriceID string `gorm:"column:stripe_price_id;not null;uniqueIndex:idx_plans_stripe_price_id"`
	Interval      string // "month" | "year"
}
