package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"magpulse/internal/auth"
	"magpulse/internal/cache"
	"magpulse/internal/database"
	"magpulse/internal/handlers"
	"magpulse/internal/services"
	"magpulse/internal/store"
	"magpulse/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Connect to database
	db, err := database.Connect(database.LoadConfig())
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer database.Close(db)

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	// Repositories
	contentRepo := store.NewGormContentRepository(db)
	engagementRepo := store.NewGormEngagementRepository(db)
	trendingRepo := store.NewGormTrendingRepository(db)
	historyRepo := store.NewGormReadingHistoryRepository(db)

	// Scoring services
	engagementService := services.NewEngagementService(engagementRepo)
	similarityService := services.NewSimilarityService(contentRepo, engagementRepo)
	trendingService := services.NewTrendingService(contentRepo, engagementRepo, trendingRepo)
	profileService := services.NewProfileService(historyRepo)
	recommender := services.NewRecommenderService(
		contentRepo, engagementRepo, trendingRepo,
		similarityService, trendingService, profileService,
	)

	// Optional Redis cache for trending responses
	trendingCache := cache.NewTrendingCacheFromEnv()

	// Start the periodic recompute worker
	workerService := worker.NewWorkerService(recommender, trendingCache)
	if err := workerService.Start(); err != nil {
		log.Fatal("Failed to start background workers: ", err)
	}

	setupGracefulShutdown(workerService, db)

	setupServer(engagementService, recommender, trendingCache)
}

func setupGracefulShutdown(workerService *worker.WorkerService, db *gorm.DB) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Received shutdown signal, gracefully shutting down...")

		workerService.Stop()
		database.Close(db)

		log.Println("Shutdown complete")
		os.Exit(0)
	}()
}

func setupServer(
	engagementService *services.EngagementService,
	recommender *services.RecommenderService,
	trendingCache *cache.TrendingCache,
) {
	// Set Gin mode based on environment
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Initialize handlers
	identity := auth.NewIdentityExtractor(os.Getenv("JWT_SECRET"))
	trackHandler := handlers.NewTrackHandler(engagementService)
	streamHandler := handlers.NewStreamHandler(engagementService)
	recoHandler := handlers.NewRecoHandler(recommender, trendingCache, identity)
	adminHandler := handlers.NewAdminHandler(recommender, trendingCache)
	docsHandler := handlers.NewDocsHandler()

	// Health check
	r.GET("/health", recoHandler.HealthCheck)

	// Serve Markdown documentation as HTML
	r.GET("/doc/:doc", docsHandler.ServeMarkdownAsHTML)

	// API routes
	api := r.Group("/api")
	{
		analytics := api.Group("/analytics")
		{
			analytics.POST("/track", trackHandler.Track)
			analytics.GET("/stream", streamHandler.Stream)
		}

		reco := api.Group("/reco")
		{
			reco.GET("/related/:id", recoHandler.GetRelatedPosts)
			reco.GET("/trending", recoHandler.GetTrendingPosts)
			reco.GET("/for-you", recoHandler.GetForYou)
		}
	}

	// Admin routes (password protected)
	admin := r.Group("/admin", adminHandler.AdminAuth())
	{
		admin.POST("/trending/recompute", adminHandler.RecomputeTrending)
	}

	// Get port from environment or default to 8080
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
