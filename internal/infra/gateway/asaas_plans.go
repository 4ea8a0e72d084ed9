package gateway

// asaasPlan is one row of the Stripe-price-id compatibility table. ASAAS has
// no recurring-checkout primitive keyed by a price object, so Stripe-style
// price identifiers are translated into a flat {name, value, cycle} payment
// link configuration. This table is configuration, not logic, and must be
// kept in sync with the commercial plan catalog.
type asaasPlan struct {
	Name        string
	AmountCents int64
	Cycle       string // MONTHLY | YEARLY
}

var asaasPlanTable = map[string]asaasPlan{
	"price_starter_monthly": {Name: "Starter", AmountCents: 9900, Cycle: "MONTHLY"},
	"price_pro_monthly":     {Name: "Pro", AmountCents: 19900, Cycle: "MONTHLY"},
	"price_pro_yearly":      {Name: "Pro (anual)", AmountCents: 199000, Cycle: "YEARLY"},
	"price_premium_monthly": {Name: "Premium", AmountCents: 34900, Cycle: "MONTHLY"},
	"price_premium_yearly":  {Name: "Premium (anual)", AmountCents: 349000, Cycle: "YEARLY"},
}

// asaasDefaultPlan is the documented fallback for price ids the table does
// not know; unknown ids never fail checkout.
var asaasDefaultPlan = asaasPlan{Name: "Starter", AmountCents: 9900, Cycle: "MONTHLY"}

func asaasPlanForPrice(priceID string) asaasPlan {
	if p, ok := asaasPlanTable[priceID]; ok {
		return p
	}
	return asaasDefaultPlan
}
