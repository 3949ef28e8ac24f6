package routes

import (
	"clutchzone-api/internal/analytics"
	"clutchzone-api/internal/handlers"
	"clutchzone-api/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRoutes builds the full HTTP surface: REST API, websocket endpoints
// and the Prometheus scrape target.
func SetupRoutes(ws *handlers.WSHandler) *gin.Engine {
	// Create a new GIN Router
	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery())

	// CORS middleware (for frontend integration)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204) // This depends on the implementation of the frontend
			return
		}

		c.Next()
	})

	ginRouter.Use(middleware.Analytics())

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "ClutchZone API is running",
		})
	})

	// Prometheus scrape target
	ginRouter.GET("/metrics", gin.WrapH(analytics.Handler()))

	api := ginRouter.Group("/api")

	// Public routes (no authentication required)
	{
		api.POST("/auth/register", handlers.Register)
		api.POST("/auth/login", handlers.Login)
		api.POST("/auth/check-username", handlers.CheckUsername)

		api.GET("/tournaments", handlers.ListTournaments)
		api.GET("/tournaments/:id", handlers.GetTournament)

		api.GET("/players", handlers.ListPlayers)
		api.GET("/players/leaderboard", handlers.GetLeaderboard)
		api.GET("/players/:id", handlers.GetPlayerProfile)

		api.GET("/stats/realtime", ws.RealtimeStats)
		api.POST("/support", handlers.SubmitSupportTicket)
	}

	// WebSocket endpoints authenticate via optional ?token= themselves;
	// the JWT middleware would reject anonymous spectators.
	{
		api.GET("/ws/general", ws.General)
		api.GET("/ws/tournament/:id", ws.Tournament)
		api.GET("/ws/chat", ws.Chat)
	}

	// Protected routes (authentication required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(middleware.JWTAuthMiddleware())
	{
		protectedRoutes.GET("/auth/me", handlers.Me)
		protectedRoutes.GET("/players/me", handlers.GetMyProfile)

		protectedRoutes.POST("/tournaments/:id/register", handlers.RegisterForTournament)
		protectedRoutes.DELETE("/tournaments/:id/register", handlers.UnregisterFromTournament)
		protectedRoutes.GET("/tournaments/:id/participants", handlers.ListParticipants)
		protectedRoutes.POST("/tournaments/:id/results", handlers.SubmitMatchResult)
	}

	// Admin routes
	adminRoutes := api.Group("/admin")
	adminRoutes.Use(middleware.JWTAuthMiddleware(), middleware.AdminRequired())
	{
		adminRoutes.GET("/stats", handlers.GetAdminStats)
		adminRoutes.GET("/users", handlers.ListUsers)
		adminRoutes.PUT("/users/:id/active", handlers.SetUserActive)

		adminRoutes.POST("/tournaments", handlers.CreateTournament)
		adminRoutes.PUT("/tournaments/:id", handlers.UpdateTournament)
		adminRoutes.DELETE("/tournaments/:id", handlers.DeleteTournament)
		adminRoutes.POST("/tournaments/:id/start", handlers.StartTournament)
		adminRoutes.POST("/tournaments/:id/complete", handlers.CompleteTournament)

		adminRoutes.GET("/results/pending", handlers.ListPendingResults)
		adminRoutes.POST("/results/:id/verify", handlers.VerifyMatchResult)
	}

	return ginRouter
}
