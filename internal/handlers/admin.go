package handlers

import (
	"net/http"
	"os"

	"magpulse/internal/cache"
	"magpulse/internal/models"
	"magpulse/internal/services"

	"github.com/gin-gonic/gin"
)

// AdminHandler exposes maintenance operations, normally driven by an
// external scheduler or an operator.
type AdminHandler struct {
	recommender   *services.RecommenderService
	trendingCache *cache.TrendingCache
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(recommender *services.RecommenderService, trendingCache *cache.TrendingCache) *AdminHandler {
	return &AdminHandler{
		recommender:   recommender,
		trendingCache: trendingCache,
	}
}

// AdminAuth middleware for basic password protection
func (h *AdminHandler) AdminAuth() gin.HandlerFunc {
	return gin.BasicAuth(gin.Accounts{
		"admin": getAdminPassword(),
	})
}

// getAdminPassword returns the admin password from environment or default
func getAdminPassword() string {
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123" // Default password for development
	}
	return password
}

// RecomputeTrending handles POST /admin/trending/recompute
func (h *AdminHandler) RecomputeTrending(c *gin.Context) {
	var req struct {
		Timeframe string `json:"timeframe"`
	}
	// Empty body means the default timeframe.
	_ = c.ShouldBindJSON(&req)

	timeframe := req.Timeframe
	if !validTimeframes[timeframe] {
		timeframe = models.Timeframe24h
	}

	processed, err := h.recommender.RecomputeTrending(c.Request.Context(), timeframe)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to recompute trending scores",
			"details": err.Error(),
		})
		return
	}

	h.trendingCache.InvalidateTimeframe(c.Request.Context(), timeframe)

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"timeframe":       timeframe,
		"posts_processed": processed,
	})
}
