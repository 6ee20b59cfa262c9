package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/btg-funds-backend/internal/api/handler"
	"github.com/btg-funds-backend/internal/api/middleware"
	"github.com/btg-funds-backend/internal/auth"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	tokens *auth.TokenManager,
	userHandler *handler.UserHandler,
	fundHandler *handler.FundHandler,
	portfolioHandler *handler.PortfolioHandler,
	auditHandler *handler.AuditHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	authenticated := middleware.RequireAuth(tokens)
	adminOnly := middleware.RequireAdmin()

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Account registration and authentication
		users := v1.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)
			users.GET("/me", authenticated, userHandler.Me)
			users.PUT("/me", authenticated, userHandler.UpdateProfile)
			users.GET("", authenticated, adminOnly, userHandler.List)
			users.GET("/:id", authenticated, adminOnly, userHandler.GetByID)
			users.PUT("/:id/balance", authenticated, adminOnly, userHandler.AdjustBalance)
			users.PUT("/:id/status", authenticated, adminOnly, userHandler.UpdateStatus)
		}

		// Fund catalog
		funds := v1.Group("/funds")
		{
			funds.GET("", fundHandler.List)
			funds.GET("/:id", fundHandler.GetByID)
			funds.POST("", authenticated, adminOnly, fundHandler.Create)
		}

		// Portfolio operations
		portfolio := v1.Group("/portfolio", authenticated)
		{
			portfolio.GET("/balance", portfolioHandler.Balance)
			portfolio.GET("/history", portfolioHandler.History)
			portfolio.POST("/subscriptions", portfolioHandler.Subscribe)
			portfolio.DELETE("/subscriptions/:fund_id", portfolioHandler.Cancel)
		}

		// Archive queries
		admin := v1.Group("/admin", authenticated, adminOnly)
		{
			admin.GET("/audit", auditHandler.Search)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
