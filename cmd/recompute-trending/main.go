// One-shot trending recompute for external schedulers (cron, CI, etc.).
package main

import (
	"context"
	"log"
	"os"

	"magpulse/internal/cache"
	"magpulse/internal/database"
	"magpulse/internal/models"
	"magpulse/internal/services"
	"magpulse/internal/store"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	db, err := database.Connect(database.LoadConfig())
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer database.Close(db)

	contentRepo := store.NewGormContentRepository(db)
	engagementRepo := store.NewGormEngagementRepository(db)
	trendingRepo := store.NewGormTrendingRepository(db)

	trendingService := services.NewTrendingService(contentRepo, engagementRepo, trendingRepo)
	trendingCache := cache.NewTrendingCacheFromEnv()

	timeframes := []string{models.Timeframe24h, models.Timeframe7d, models.Timeframe30d}
	if tf := os.Getenv("TIMEFRAME"); tf != "" {
		timeframes = []string{tf}
	}

	ctx := context.Background()
	for _, timeframe := range timeframes {
		processed, err := trendingService.RecomputeTrending(ctx, timeframe)
		if err != nil {
			log.Fatalf("Recompute (%s) failed: %v", timeframe, err)
		}
		trendingCache.InvalidateTimeframe(ctx, timeframe)
		log.Printf("Recompute (%s): %d posts processed", timeframe, processed)
	}
}
