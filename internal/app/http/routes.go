package routes

import (
	adminapi "rental-app/internal/api/admin"
	authapi "rental-app/internal/api/auth"
	"rental-app/internal/api/billing"
	"rental-app/internal/api/plans"
	stripewebhooks "rental-app/internal/api/stripewebhook"
	"rental-app/internal/api/users"
	"rental-app/internal/app/http/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	// Raw body route: the webhook verifies its own signature, so no
	// sanitation middleware here.
	r.POST("/stripe-webhook", stripewebhooks.StripeWebhook)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	public := r.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())

	public.POST("/register", authapi.Register)
	public.POST("/login", authapi.Login)
	public.GET("/plans", plans.ListPlans)
	public.GET("/verify", users.VerifyEmail)
	public.POST("/resend-verification", authapi.ResendVerification)
	public.POST("/request-password-reset", authapi.RequestPasswordReset)
	public.POST("/reset-password", authapi.ResetPassword)

	public.GET("/auth/google", authapi.GoogleStart)
	public.GET("/auth/google/callback", authapi.GoogleCallback)

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware())
	auth.GET("/me", users.GetCurrentUser)
	auth.POST("/create-checkout", billing.CreateCheckout)
	auth.POST("/get-billing-info", billing.GetBillingInfo)
	auth.POST("/cancel-subscription", billing.CancelSubscription)
	auth.GET("/entitlement", middleware.RequireActiveSubscription(), billing.GetEntitlement)
	auth.POST("/change-password", authapi.ChangePassword)

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRole("admin"))
	admin.GET("/dashboard", adminapi.AdminDashboard)
	admin.GET("/users", adminapi.ListAllUsers)
	admin.GET("/subscriptions", adminapi.ListAllSubscriptions)
	admin.GET("/events", adminapi.ListAllEvents)
	admin.GET("/user/:id", adminapi.GetUserDetails)
	admin.POST("/sync-plans", plans.SyncPlansFromStripe)
}
