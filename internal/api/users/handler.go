package users

import (
	"net/http"
	"time"

	"rental-app/config"
	"rental-app/database"
	"rental-app/internal/domain/billing"
	"rental-app/internal/domain/users"

	"github.com/gin-gonic/gin"
)

type UserDTO struct {
	ID         uint    `json:"id"`
	Email      string  `json:"email"`
	Name       string  `json:"name"`
	Lastname   string  `json:"lastname"`
	Tel        *string `json:"tel,omitempty"`
	Role       string  `json:"role"`
	IsVerified bool    `json:"is_verified"`
}

type SubscriptionDTO struct {
	Gateway          string     `json:"gateway"`
	Status           string     `json:"status"`
	PlanName         *string    `json:"plan_name,omitempty"`
	BillingCycle     *string    `json:"billing_cycle,omitempty"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
}

type MeResponse struct {
	User         UserDTO          `json:"user"`
	Subscription *SubscriptionDTO `json:"subscription,omitempty"`
}

func GetCurrentUser(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var user users.User
	if err := database.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var rows []billing.Subscription
	if err := database.DB.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscription"})
		return
	}

	resp := MeResponse{
		User: UserDTO{
			ID:         user.ID,
			Email:      user.Email,
			Name:       user.Name,
			Lastname:   user.Lastname,
			Tel:        stringPtrIfNotEmpty(user.Tel),
			Role:       user.Role,
			IsVerified: user.IsVerified,
		},
	}

	if sub := billing.ActiveSubscription(rows, config.ACTIVE_GATEWAY); sub != nil {
		resp.Subscription = &SubscriptionDTO{
			Gateway:          sub.GatewayName,
			Status:           sub.Status,
			PlanName:         sub.PlanName,
			BillingCycle:     sub.BillingCycle,
			CurrentPeriodEnd: sub.CurrentPeriodEnd,
		}
	}

	c.JSON(http.StatusOK, resp)
}

func stringPtrIfNotEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing token"})
		return
	}

	type Token struct {
		UserID int
	}
	var t Token
	if err := database.DB.Table("verification_tokens").Where("token = ?", token).First(&t).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired token"})
		return
	}

	if err := database.DB.Model(&users.User{}).Where("id = ?", t.UserID).Update("is_verified", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify user"})
		return
	}

	_ = database.DB.Exec("DELETE FROM verification_tokens WHERE token = ?", token)

	c.Redirect(http.StatusTemporaryRedirect, config.APP_URL+"/signin")
}
