package admin

import (
	"net/http"
	"time"

	"rental-app/database"
	"rental-app/internal/domain/billing"
	"rental-app/internal/domain/users"

	"github.com/gin-gonic/gin"
)

type AdminUser struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Lastname   string `json:"lastname"`
	Tel        string `json:"tel"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	IsVerified bool   `json:"is_verified"`
}

type AdminSubscription struct {
	ID               uint       `json:"id"`
	UserID           uint       `json:"user_id"`
	Gateway          string     `json:"gateway"`
	Status           string     `json:"status"`
	PlanName         *string    `json:"plan_name,omitempty"`
	AmountCents      *int64     `json:"amount_cents,omitempty"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type AdminEvent struct {
	ID          string  `json:"id"`
	UserID      uint    `json:"user_id"`
	EventType   string  `json:"event_type"`
	Description string  `json:"description"`
	PlanName    *string `json:"plan_name,omitempty"`
	AmountCents *int64  `json:"amount_cents,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

func AdminDashboard(c *gin.Context) {
	var totalUsers int64
	var activeSubs int64

	database.DB.Model(&users.User{}).Count(&totalUsers)
	database.DB.Model(&billing.Subscription{}).
		Where("status IN ?", []string{billing.StatusActive, billing.StatusTrialing}).
		Count(&activeSubs)

	c.JSON(http.StatusOK, gin.H{
		"total_users":          totalUsers,
		"active_subscriptions": activeSubs,
	})
}

func ListAllUsers(c *gin.Context) {
	var all []users.User
	if err := database.DB.Find(&all).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}

	var adminUsers []AdminUser
	for _, u := range all {
		adminUsers = append(adminUsers, AdminUser{
			ID:         u.ID,
			Name:       u.Name,
			Lastname:   u.Lastname,
			Tel:        u.Tel,
			Email:      u.Email,
			Role:       u.Role,
			IsVerified: u.IsVerified,
		})
	}

	c.JSON(http.StatusOK, adminUsers)
}

func ListAllSubscriptions(c *gin.Context) {
	var subs []billing.Subscription
	if err := database.DB.Order("updated_at DESC").Find(&subs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscriptions"})
		return
	}

	var result []AdminSubscription
	for _, s := range subs {
		result = append(result, AdminSubscription{
			ID:               s.ID,
			UserID:           s.UserID,
			Gateway:          s.GatewayName,
			Status:           s.Status,
			PlanName:         s.PlanName,
			AmountCents:      s.AmountCents,
			CurrentPeriodEnd: s.CurrentPeriodEnd,
			UpdatedAt:        s.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, result)
}

func ListAllEvents(c *gin.Context) {
	var events []billing.SubscriptionEvent
	if err := database.DB.Order("created_at DESC").Limit(200).Find(&events).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load events"})
		return
	}

	var result []AdminEvent
	for _, e := range events {
		result = append(result, AdminEvent{
			ID:          e.ID,
			UserID:      e.UserID,
			EventType:   e.EventType,
			Description: e.Description,
			PlanName:    e.PlanName,
			AmountCents: e.AmountCents,
			CreatedAt:   e.CreatedAt.Format("2006-01-02 15:04"),
		})
	}

	c.JSON(http.StatusOK, result)
}

func GetUserDetails(c *gin.Context) {
	userID := c.Param("id")

	var user users.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var subs []billing.Subscription
	if err := database.DB.Where("user_id = ?", userID).Find(&subs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subscriptions"})
		return
	}

	var events []billing.SubscriptionEvent
	if err := database.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&events).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":          user,
		"subscriptions": subs,
		"events":        events,
	})
}
