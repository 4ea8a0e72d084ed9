package middleware

import (
	"net/http"

	"rental-app/config"
	"rental-app/database"
	"rental-app/internal/domain/billing"

	"github.com/gin-gonic/gin"
)

// RequireActiveSubscription gates routes on the normalized subscription
// status; trialing counts as entitled.
func RequireActiveSubscription() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")

		var rows []billing.Subscription
		if err := database.DB.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Subscription not found",
			})
			return
		}

		sub := billing.ActiveSubscription(rows, config.ACTIVE_GATEWAY)
		if sub == nil || (sub.Status != billing.StatusActive && sub.Status != billing.StatusTrialing) {
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{
				"error": "An active subscription is required",
			})
			return
		}

		c.Next()
	}
}
