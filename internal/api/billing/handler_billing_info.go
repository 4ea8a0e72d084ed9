package billing

import (
	"net/http"

	"rental-app/config"
	"rental-app/database"
	"rental-app/internal/infra/gateway"

	"github.com/gin-gonic/gin"
)

// GetBillingInfo runs a reconciliation poll and returns the refreshed
// billing view: plan, status, next renewal, recent invoices and the event
// timeline.
func GetBillingInfo(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}

	r := &Reconciler{
		Store:             NewGormStore(database.DB),
		Providers:         gateway.GetProvider,
		ConfiguredGateway: config.ACTIVE_GATEWAY,
	}

	info, err := r.Refresh(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, info)
}
