package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"magpulse/internal/auth"
	"magpulse/internal/cache"
	"magpulse/internal/models"
	"magpulse/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var validTimeframes = map[string]bool{
	models.Timeframe24h: true,
	models.Timeframe7d:  true,
	models.Timeframe30d: true,
}

// RecoHandler handles HTTP requests for recommendations
type RecoHandler struct {
	recommender   *services.RecommenderService
	trendingCache *cache.TrendingCache
	identity      *auth.IdentityExtractor
}

// NewRecoHandler creates a new recommendation handler
func NewRecoHandler(recommender *services.RecommenderService, trendingCache *cache.TrendingCache, identity *auth.IdentityExtractor) *RecoHandler {
	return &RecoHandler{
		recommender:   recommender,
		trendingCache: trendingCache,
		identity:      identity,
	}
}

// GetRelatedPosts handles GET /api/reco/related/:id
func (h *RecoHandler) GetRelatedPosts(c *gin.Context) {
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID format"})
		return
	}

	limit := parseLimit(c, 3, 50)

	posts, err := h.recommender.RelatedPosts(postID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve related posts",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// GetTrendingPosts handles GET /api/reco/trending
func (h *RecoHandler) GetTrendingPosts(c *gin.Context) {
	timeframe := c.DefaultQuery("timeframe", models.Timeframe24h)
	if !validTimeframes[timeframe] {
		timeframe = models.Timeframe24h
	}
	limit := parseLimit(c, 20, 100)
	category := c.Query("category")

	if data, ok := h.trendingCache.Get(c.Request.Context(), timeframe, limit, category); ok {
		c.Data(http.StatusOK, "application/json; charset=utf-8", data)
		return
	}

	posts, err := h.recommender.TrendingPosts(timeframe, limit, category)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve trending posts",
			"details": err.Error(),
		})
		return
	}

	response := gin.H{"timeframe": timeframe, "posts": posts}
	if data, err := json.Marshal(response); err == nil {
		h.trendingCache.Set(c.Request.Context(), timeframe, limit, category, data)
	}

	c.JSON(http.StatusOK, response)
}

// GetForYou handles GET /api/reco/for-you
func (h *RecoHandler) GetForYou(c *gin.Context) {
	limit := parseLimit(c, 6, 50)

	// Anonymous readers are served the trending fallback.
	userID := h.identity.UserIDFromHeader(c.GetHeader("Authorization"))

	posts, err := h.recommender.ForYou(userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to build feed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"personalized": userID != nil,
		"posts":        posts,
	})
}

// HealthCheck handles GET /health
func (h *RecoHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parseLimit reads the limit query parameter with a default and a cap.
func parseLimit(c *gin.Context, fallback, max int) int {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(fallback)))
	if limit < 1 {
		limit = fallback
	}
	if limit > max {
		limit = max
	}
	return limit
}
