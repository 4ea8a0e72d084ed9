package billing

import (
	"errors"
	"fmt"
	"net/http"

	"rental-app/config"
	"rental-app/database"
	domain "rental-app/internal/domain/billing"
	"rental-app/internal/domain/plans"
	"rental-app/internal/domain/users"
	"rental-app/internal/infra/gateway"

	"github.com/gin-gonic/gin"
)

// CreateCheckout opens a hosted checkout flow on the active gateway. The
// subscription row is created up front at status=incomplete so the webhook
// and the reconciler both have something to converge onto.
func CreateCheckout(c *gin.Context) {
	var body struct {
		PriceID    string `json:"priceId"`
		SuccessURL string `json:"successUrl"`
		CancelURL  string `json:"cancelUrl"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.PriceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid priceId", "type": "checkout_error"})
		return
	}

	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}

	var user users.User
	if err := database.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	if !user.IsVerified {
		c.JSON(http.StatusForbidden, gin.H{"error": "Please verify your email first"})
		return
	}

	// allow-list price id against the plan catalog
	var plan plans.Plan
	if err := database.DB.Where("stripe_price_id = ?", body.PriceID).First(&plan).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown plan/priceId", "type": "checkout_error"})
		return
	}

	provider, err := gateway.GetProvider("")
	if err != nil {
		respondCheckoutFailure(c, err)
		return
	}

	store := NewGormStore(database.DB)
	sub, err := subscriptionForGateway(store, userID, provider.Name())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscription"})
		return
	}

	// Reuse the remote customer if one already exists under this gateway;
	// CreateCustomer is not idempotent on the gateway side.
	if sub.GatewayCustomerID == nil || *sub.GatewayCustomerID == "" {
		customerID, err := provider.CreateCustomer(gateway.CustomerParams{
			Email: user.Email,
			Name:  fmt.Sprintf("%s %s", user.Name, user.Lastname),
			TaxID: derefString(user.TaxID),
			Metadata: map[string]string{
				"user_id": fmt.Sprint(user.ID),
			},
		})
		if err != nil {
			respondCheckoutFailure(c, err)
			return
		}
		sub.GatewayCustomerID = &customerID
		if err := store.SaveSubscription(sub); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store gateway customer"})
			return
		}
	}

	successURL := body.SuccessURL
	if successURL == "" {
		successURL = config.APP_URL + "/account"
	}
	cancelURL := body.CancelURL
	if cancelURL == "" {
		cancelURL = config.APP_URL + "/account?canceled=1"
	}

	session, err := provider.CreateCheckout(gateway.CheckoutParams{
		CustomerID: *sub.GatewayCustomerID,
		PriceID:    body.PriceID,
		SuccessURL: successURL,
		CancelURL:  cancelURL,
		Metadata: map[string]string{
			"user_id": fmt.Sprint(user.ID),
		},
	})
	if err != nil {
		respondCheckoutFailure(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessionId": session.SessionID,
		"url":       session.URL,
		"gateway":   session.Gateway,
	})
}

// subscriptionForGateway returns the user's row under the given gateway,
// creating an incomplete one on first checkout.
func subscriptionForGateway(store SubscriptionStore, userID uint, gatewayName string) (*domain.Subscription, error) {
	rows, err := store.SubscriptionsForUser(userID)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].GatewayName == gatewayName {
			return &rows[i], nil
		}
	}

	sub := &domain.Subscription{
		UserID:      userID,
		GatewayName: gatewayName,
		Status:      domain.StatusIncomplete,
	}
	if err := store.SaveSubscription(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func respondCheckoutFailure(c *gin.Context, err error) {
	var ce *gateway.CheckoutError
	if errors.As(err, &ce) {
		c.JSON(http.StatusBadRequest, gin.H{"error": ce.Error(), "type": "checkout_error"})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "type": "runtime_error"})
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
