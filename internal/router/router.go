// internal/router/router.go
package router

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/javajoker/rights-backend/internal/config"
	"github.com/javajoker/rights-backend/internal/handlers"
	"github.com/javajoker/rights-backend/internal/metrics"
	"github.com/javajoker/rights-backend/internal/middleware"
	"github.com/javajoker/rights-backend/internal/repository"
	"github.com/javajoker/rights-backend/internal/services"
	"github.com/javajoker/rights-backend/internal/utils"
)

// Initialize wires services and handlers into a gin engine. Background
// rate limiter cleanup stops when ctx is cancelled.
func Initialize(ctx context.Context, db *gorm.DB, cache *redis.Client, cfg *config.Config) (*gin.Engine, error) {
	// Initialize services
	contractRepo := repository.NewContractRepository(db)
	auditService := services.NewAuditService(db)
	statusService := services.NewStatusService(contractRepo, auditService)
	notificationService := services.NewNotificationService(db, cfg)
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}
	authorizationService := services.NewAuthorizationService(db, cache, time.Duration(cfg.Redis.CapabilityTTL)*time.Second, auditService)
	if err := authorizationService.EnsureDefaults(ctx); err != nil {
		return nil, fmt.Errorf("failed to seed role capabilities: %w", err)
	}

	authService := services.NewAuthService(db, cfg, notificationService, auditService)
	userService := services.NewUserService(db, auditService)
	contractService := services.NewContractService(db, contractRepo, statusService, auditService, cfg)
	availabilityService := services.NewAvailabilityService(contractRepo, statusService, cfg.Availability)
	contentService := services.NewContentService(db, statusService, auditService)
	documentService := services.NewDocumentService(db, storageService, auditService)
	royaltyService := services.NewRoyaltyService(db, payoutProvider(cfg), auditService)
	adminService := services.NewAdminService(db, contractService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, userService)
	userHandler := handlers.NewUserHandler(userService, authService)
	contractHandler := handlers.NewContractHandler(contractService, availabilityService, statusService)
	contentHandler := handlers.NewContentHandler(contentService)
	documentHandler := handlers.NewDocumentHandler(documentService)
	royaltyHandler := handlers.NewRoyaltyHandler(royaltyService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	adminHandler := handlers.NewAdminHandler(adminService, auditService, authorizationService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	generalLimiter := middleware.NewRateLimiter(rate.Every(100*time.Millisecond), 20) // 10 rps, bursts of 20
	authLimiter := middleware.NewRateLimiter(rate.Every(12*time.Second), 5)           // 5 per minute
	uploadLimiter := middleware.NewRateLimiter(rate.Every(6*time.Second), 10)         // 10 per minute
	for _, rl := range []*middleware.RateLimiter{generalLimiter, authLimiter, uploadLimiter} {
		rl.StartCleanup(time.Minute, 3*time.Minute, ctx.Done())
	}

	metrics.Init()

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(metrics.Middleware())
	r.Use(middleware.RequestLogger())
	r.Use(cors.New(corsConfig(cfg)))
	r.Use(middleware.I18nMiddleware(cfg.I18n.DefaultLocale))
	r.Use(generalLimiter.Middleware())

	r.GET("/health", func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":  status,
			"version": "1.0.0",
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	can := func(capability string) gin.HandlerFunc {
		return middleware.RequireCapability(authorizationService, capability)
	}

	v1 := r.Group("/v1")
	{
		auth := v1.Group("/auth")
		{
			public := auth.Group("")
			public.Use(authLimiter.Middleware())
			{
				public.POST("/login", authHandler.Login)
				public.POST("/refresh", authHandler.RefreshToken)
				public.POST("/accept-invite", authHandler.AcceptInvite)
				public.POST("/forgot-password", authHandler.ForgotPassword)
				public.POST("/reset-password", authHandler.ResetPassword)
			}

			protected := auth.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("/logout", authHandler.Logout)
				protected.GET("/me", authHandler.GetProfile)
				protected.PUT("/me", authHandler.UpdateProfile)
				protected.PUT("/password", authHandler.ChangePassword)
			}
		}

		contracts := v1.Group("/contracts")
		contracts.Use(middleware.AuthRequired())
		{
			contracts.GET("", can(services.CapContractsRead), contractHandler.ListContracts)
			contracts.POST("", can(services.CapContractsWrite), contractHandler.CreateContract)
			contracts.GET("/summary", can(services.CapContractsRead), contractHandler.GetStatusSummary)
			contracts.GET("/expiring", can(services.CapContractsRead), contractHandler.GetExpiringContracts)
			contracts.POST("/availability", can(services.CapAvailability), contractHandler.CheckAvailability)
			contracts.POST("/reconcile", can(services.CapContractsWrite), contractHandler.ReconcileStatuses)
			contracts.GET("/:id", can(services.CapContractsRead), contractHandler.GetContract)
			contracts.PUT("/:id", can(services.CapContractsWrite), contractHandler.UpdateContract)
			contracts.DELETE("/:id", can(services.CapContractsDelete), contractHandler.DeleteContract)
			contracts.POST("/:id/terminate", can(services.CapContractsWrite), contractHandler.TerminateContract)
			contracts.POST("/:id/amendments", can(services.CapContractsWrite), contractHandler.CreateAmendment)
			contracts.GET("/:id/chain", can(services.CapContractsRead), contractHandler.GetAmendmentChain)

			contracts.GET("/:id/content", can(services.CapContentRead), contentHandler.ListContractContent)
			contracts.POST("/:id/content", can(services.CapContractsWrite), contentHandler.LinkContent)
			contracts.DELETE("/:id/content/:contentId", can(services.CapContractsWrite), contentHandler.UnlinkContent)

			contracts.GET("/:id/documents", can(services.CapDocumentsRead), documentHandler.ListDocuments)
			contracts.POST("/:id/documents", can(services.CapDocumentsWrite), uploadLimiter.Middleware(), documentHandler.UploadDocument)
			contracts.GET("/:id/documents/:docId", can(services.CapDocumentsRead), documentHandler.GetDownload)
			contracts.DELETE("/:id/documents/:docId", can(services.CapDocumentsWrite), documentHandler.DeleteDocument)
		}

		content := v1.Group("/content")
		content.Use(middleware.AuthRequired())
		{
			content.GET("", can(services.CapContentRead), contentHandler.ListContent)
			content.POST("", can(services.CapContentWrite), contentHandler.CreateContent)
			content.GET("/:id", can(services.CapContentRead), contentHandler.GetContent)
			content.PUT("/:id", can(services.CapContentWrite), contentHandler.UpdateContent)
			content.DELETE("/:id", can(services.CapContentWrite), contentHandler.DeleteContent)
		}

		royalties := v1.Group("/royalties")
		royalties.Use(middleware.AuthRequired())
		{
			royalties.GET("", can(services.CapRoyaltiesRead), royaltyHandler.ListRoyalties)
			royalties.POST("", can(services.CapRoyaltiesWrite), royaltyHandler.CreateRoyalty)
			royalties.GET("/export", can(services.CapRoyaltiesRead), royaltyHandler.ExportStatement)
			royalties.GET("/:id", can(services.CapRoyaltiesRead), royaltyHandler.GetRoyalty)
			royalties.POST("/:id/approve", can(services.CapRoyaltiesApprove), royaltyHandler.ApproveRoyalty)
			royalties.POST("/:id/pay", can(services.CapRoyaltiesPay), royaltyHandler.MarkPaid)
		}

		users := v1.Group("/users")
		users.Use(middleware.AuthRequired(), can(services.CapUsersManage))
		{
			users.GET("", userHandler.ListUsers)
			users.POST("/invite", userHandler.InviteUser)
			users.GET("/:id", userHandler.GetUser)
			users.PUT("/:id/role", userHandler.UpdateRole)
			users.PUT("/:id/status", userHandler.SetActive)
			users.DELETE("/:id", userHandler.DeleteUser)
		}

		notifications := v1.Group("/notifications")
		notifications.Use(middleware.AuthRequired())
		{
			notifications.GET("", notificationHandler.ListNotifications)
			notifications.PUT("/:id/read", notificationHandler.MarkRead)
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired())
		{
			admin.GET("/dashboard/stats", middleware.AdminRequired(), adminHandler.GetDashboardStats)
			admin.GET("/audit-logs", can(services.CapAuditRead), adminHandler.GetAuditLogs)
			admin.GET("/roles", can(services.CapRolesManage), adminHandler.GetRoles)
			admin.PUT("/roles/:role", can(services.CapRolesManage), adminHandler.SetRoleCapabilities)
		}
	}

	// Local document storage is served directly in development only.
	if cfg.Environment == "development" && !storageService.UsesS3() {
		r.Static("/uploads", services.LocalUploadDir)
	}

	return r, nil
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = []string{cfg.Frontend.BaseURL}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", "Accept-Language", middleware.RequestIDHeader)
	corsCfg.ExposeHeaders = []string{middleware.RequestIDHeader, "Content-Disposition", "X-Total-Count"}
	corsCfg.AllowCredentials = true
	corsCfg.MaxAge = 12 * time.Hour
	return corsCfg
}

// payoutProvider returns nil when Stripe is not configured so that marking
// a royalty paid to a connected account fails fast.
func payoutProvider(cfg *config.Config) services.PayoutProvider {
	payments := services.NewPaymentService(cfg)
	if !payments.Enabled() {
		return nil
	}
	return payments
}
