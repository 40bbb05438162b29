package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stackassist-backend/internal/config"
	"stackassist-backend/internal/core"
	"stackassist-backend/internal/metrics"
	"stackassist-backend/internal/middleware"
	"stackassist-backend/internal/models"
)

// Services bundles everything the routes dispatch to.
type Services struct {
	Verifier    middleware.TokenVerifier
	Sessions    *core.SessionStore
	Guard       middleware.PrincipalResolver
	RateLimiter *middleware.RateLimiter

	Accounts          core.AccountService
	Clients           core.ClientService
	Sites             core.SiteService
	HostingAccounts   core.HostingAccountService
	MobileApps        core.MobileAppService
	DeveloperAccounts core.DeveloperAccountService
	Tasks             core.TaskService
	Team              core.TeamService
	Notifications     core.NotificationService
	Reports           core.ReportService
	Messages          core.MessageService
	Onboarding        core.OnboardingService
}

// SetupRoutes registers the /api/v1 routes, /health and /metrics. Global middleware
// (logging, recovery, CORS, metrics) is applied by the caller.
func SetupRoutes(router *gin.Engine, appConfig *config.Config, logger *zap.Logger, svc Services) {
	authMW := middleware.NewAuthMiddleware(svc.Verifier, logger)
	sessionMW := middleware.SessionMiddleware(svc.Sessions, appConfig.SessionEnforced)
	accessMW := middleware.AccessMiddleware(svc.Guard, logger)
	var limit gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if svc.RateLimiter != nil {
		limit = svc.RateLimiter.Handler()
	}

	authHandler := NewAuthHandler(svc.Sessions, svc.Accounts, logger)
	clientHandler := NewResourceHandler[models.Client, models.CreateClientRequest, models.UpdateClientRequest](svc.Clients, logger)
	siteHandler := NewResourceHandler[models.Site, models.SiteRequest, models.SiteRequest](svc.Sites, logger)
	hostingHandler := NewResourceHandler[models.HostingAccount, models.HostingAccountRequest, models.HostingAccountRequest](svc.HostingAccounts, logger)
	appHandler := NewResourceHandler[models.MobileApp, models.MobileAppRequest, models.MobileAppRequest](svc.MobileApps, logger)
	developerHandler := NewResourceHandler[models.DeveloperAccount, models.DeveloperAccountRequest, models.DeveloperAccountRequest](svc.DeveloperAccounts, logger)
	taskHandler := NewTaskHandler(svc.Tasks, logger)
	teamHandler := NewTeamHandler(svc.Team, logger)
	notificationHandler := NewNotificationHandler(svc.Notifications, svc.Reports, logger)
	reportHandler := NewReportHandler(svc.Reports, logger)
	messageHandler := NewMessageHandler(svc.Messages, logger)
	onboardingHandler := NewOnboardingHandler(svc.Onboarding, logger)

	apiV1 := router.Group("/api/v1")
	{
		public := apiV1.Group("", limit)
		public.POST("/auth/login", authHandler.Login)
		public.POST("/auth/register", authHandler.Register)
		public.GET("/onboard/:token", onboardingHandler.Describe)
		public.POST("/onboard/:token", onboardingHandler.Submit)

		// Token only: these manage the session itself.
		sessionGroup := apiV1.Group("/auth", authMW.VerifyToken(), limit)
		sessionGroup.POST("/session", authHandler.StartSession)
		sessionGroup.POST("/logout", authHandler.Logout)
		sessionGroup.POST("/activity", authHandler.Activity)

		protected := apiV1.Group("", authMW.VerifyToken(), limit, sessionMW, accessMW)
		protected.GET("/me", authHandler.Me)

		protected.GET("/clients/onboarding-link", onboardingHandler.Link)
		clientHandler.Register(protected.Group("/clients"))
		siteHandler.Register(protected.Group("/sites"))
		hostingHandler.Register(protected.Group("/hosting-accounts"))
		appHandler.Register(protected.Group("/mobile-apps"))
		developerHandler.Register(protected.Group("/developer-accounts"))
		taskHandler.Register(protected.Group("/tasks"))

		team := protected.Group("/team")
		team.GET("", teamHandler.List)
		team.POST("", teamHandler.Invite)
		team.PUT("/:id", teamHandler.Update)
		team.DELETE("/:id", teamHandler.Remove)
		team.POST("/invitations/send", teamHandler.SendInvitationEmail)

		notifications := protected.Group("/notifications")
		notifications.GET("", notificationHandler.List)
		notifications.GET("/upcoming", notificationHandler.Upcoming)
		notifications.GET("/settings", notificationHandler.GetSettings)
		notifications.PUT("/settings", notificationHandler.UpdateSettings)
		notifications.POST("/scan", notificationHandler.Scan)

		protected.GET("/dashboard/summary", reportHandler.Summary)
		protected.GET("/dashboard/analytics", reportHandler.Analytics)
		protected.GET("/dashboard/critical-alerts", reportHandler.CriticalAlerts)
		protected.GET("/reports/tasks", reportHandler.Tasks)

		protected.GET("/messages", messageHandler.List)
		protected.POST("/messages", messageHandler.Post)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Stack Assist backend is healthy."})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	logger.Info("API routes configured under /api/v1, /health and /metrics")
}
