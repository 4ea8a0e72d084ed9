package billing

import (
	"net/http"

	"rental-app/config"
	"rental-app/database"
	domain "rental-app/internal/domain/billing"

	"github.com/gin-gonic/gin"
)

// GetEntitlement is a cheap check the frontend calls before loading paid
// screens. It only runs behind the active-subscription guard, so reaching it
// already means the user is entitled; the body carries the plan for display.
func GetEntitlement(c *gin.Context) {
	userID := c.GetUint("user_id")

	store := NewGormStore(database.DB)
	rows, err := store.SubscriptionsForUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscription"})
		return
	}

	resp := gin.H{"entitled": true}
	if sub := domain.ActiveSubscription(rows, config.ACTIVE_GATEWAY); sub != nil {
		resp["status"] = sub.Status
		if sub.PlanName != nil {
			resp["planName"] = *sub.PlanName
		}
	}
	c.JSON(http.StatusOK, resp)
}
