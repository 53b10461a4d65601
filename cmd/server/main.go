package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/votacontrol/attendance-api/internal/config"
	"github.com/votacontrol/attendance-api/internal/constants"
	"github.com/votacontrol/attendance-api/internal/database"
	"github.com/votacontrol/attendance-api/internal/handlers"
	"github.com/votacontrol/attendance-api/internal/middleware"
	"github.com/votacontrol/attendance-api/internal/repository"
	"github.com/votacontrol/attendance-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.AddIndexes(database.GetDB()); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	// Repositories and services
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	leaderRepo := repository.NewLeaderRepository(db)
	voterRepo := repository.NewVoterRepository(db)

	authService := services.NewAuthService(userRepo)
	leaderService := services.NewLeaderService(leaderRepo)
	voterService := services.NewVoterService(voterRepo, leaderRepo)
	reportService := services.NewReportService(voterRepo, leaderRepo)
	exportService := services.NewExportService()

	// Bootstrap: the system always has at least one user
	if err := authService.EnsureInitialAdmin(cfg.InitAdminUsername, cfg.InitAdminPassword); err != nil {
		log.Fatalf("Failed to ensure initial admin: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // username (empty for default user)
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   constants.SessionMaxAge,
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	leaderHandler := handlers.NewLeaderHandler(leaderService)
	voterHandler := handlers.NewVoterHandler(voterService)
	reportHandler := handlers.NewReportHandler(reportService)
	exportHandler := handlers.NewExportHandler(voterService, reportService, exportService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Attendance API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// Leader routes (protected)
		leaders := api.Group("/leaders")
		leaders.Use(middleware.RequireAuth())
		{
			leaders.GET("", leaderHandler.ListLeaders)
			leaders.POST("", leaderHandler.CreateLeader)
			leaders.GET("/:id", leaderHandler.GetLeader)
			leaders.PUT("/:id", leaderHandler.UpdateLeader)
			leaders.DELETE("/:id", leaderHandler.DeleteLeader)
			leaders.POST("/:id/toggle-checkin", leaderHandler.ToggleCheckIn)
		}

		// Voter routes (protected)
		voters := api.Group("/voters")
		voters.Use(middleware.RequireAuth())
		{
			voters.GET("", voterHandler.ListVoters)
			voters.POST("", voterHandler.CreateVoter)
			voters.GET("/colegios", voterHandler.ListColegios)
			voters.GET("/mesas", voterHandler.ListMesas)
			voters.GET("/:id", voterHandler.GetVoter)
			voters.PUT("/:id", voterHandler.UpdateVoter)
			voters.DELETE("/:id", voterHandler.DeleteVoter)
			voters.POST("/:id/toggle-checkin", voterHandler.ToggleCheckIn)
		}

		// Report routes (protected)
		reports := api.Group("/reports")
		reports.Use(middleware.RequireAuth())
		{
			reports.GET("/filters", reportHandler.GetFilterDashboard)
			reports.GET("/general", reportHandler.GetGeneralReport)
		}

		// Export routes (protected)
		export := api.Group("/export")
		export.Use(middleware.RequireAuth())
		{
			export.GET("/voters/all", exportHandler.ExportAll)
			export.GET("/voters/confirmed", exportHandler.ExportConfirmed)
			export.GET("/voters/pending", exportHandler.ExportPending)
			export.GET("/voters/filtered", exportHandler.ExportFiltered)
			export.GET("/voters/leader/:id", exportHandler.ExportByLeader)
			export.GET("/report", exportHandler.ExportReport)
		}
	}

	// Start server
	log.Printf("Server starting on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
