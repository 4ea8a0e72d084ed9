package stripewebhooks

import (
	"github.com/stripe/stripe-go/v75"
	checkoutsession "github.com/stripe/stripe-go/v75/checkout/session"
	"github.com/stripe/stripe-go/v75/subscription"
)

// StripeAPI abstracts the follow-up reads the processor does against Stripe
// after an event arrives; tests plug in a fake.
type StripeAPI interface {
	GetCheckoutSession(id string) (*stripe.CheckoutSession, error)
	GetSubscription(id string) (*stripe.Subscription, error)
}

type liveStripeAPI struct{}

func (liveStripeAPI) GetCheckoutSession(id string) (*stripe.CheckoutSession, error) {
	return checkoutsession.Get(id, &stripe.CheckoutSessionParams{
		Params: stripe.Params{
			Expand: []*string{
				stripe.String("subscription"),
				stripe.String("customer"),
			},
		},
	})
}

func (liveStripeAPI) GetSubscription(id string) (*stripe.Subscription, error) {
	return subscription.Get(id, nil)
}
