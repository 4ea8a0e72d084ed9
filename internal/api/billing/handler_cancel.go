package billing

import (
	"net/http"

	"rental-app/config"
	"rental-app/database"
	domain "rental-app/internal/domain/billing"
	"rental-app/internal/infra/gateway"

	"github.com/gin-gonic/gin"
)

// CancelSubscription requests cancellation at the gateway that owns the
// user's active subscription. The local status flips on the next webhook or
// reconciliation poll; calling this twice is safe because a not-found
// subscription counts as already canceled.
func CancelSubscription(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}

	store := NewGormStore(database.DB)
	rows, err := store.SubscriptionsForUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscription"})
		return
	}

	sub := domain.ActiveSubscription(rows, config.ACTIVE_GATEWAY)
	if sub == nil || sub.GatewaySubscriptionID == nil || *sub.GatewaySubscriptionID == "" {
		c.JSON(http.StatusOK, gin.H{"message": "No active subscription to cancel"})
		return
	}

	provider, err := gateway.GetProvider(sub.GatewayName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := provider.CancelSubscription(*sub.GatewaySubscriptionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Subscription cancellation requested"})
}
