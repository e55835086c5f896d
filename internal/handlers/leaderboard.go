package handlers

import (
	"net/http"
	"strconv"

	"codecrackers/internal/logger"
	"codecrackers/internal/models"
	"codecrackers/internal/repositories"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultLeaderboardSize = 100

type LeaderboardHandler struct {
	userRepo repositories.UserRepository
}

func NewLeaderboardHandler(userRepo repositories.UserRepository) *LeaderboardHandler {
	return &LeaderboardHandler{userRepo: userRepo}
}

// GetLeaderboard returns the official ranking. Banned users keep their
// scores but are excluded here.
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	limit := defaultLeaderboardSize
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	stats, err := h.userRepo.GetLeaderboard(c.Request.Context(), limit)
	if err != nil {
		logger.Log.Error("Failed to get leaderboard", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve leaderboard"})
		return
	}

	entries := make([]models.LeaderboardEntry, len(stats))
	for i, s := range stats {
		entries[i] = models.LeaderboardEntry{
			Rank:           i + 1,
			UserID:         s.UserID,
			Username:       s.Username,
			TotalScore:     s.TotalScore,
			ProblemsSolved: s.ProblemsSolved,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"leaderboard": entries,
	})
}

func (h *LeaderboardHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/leaderboard", h.GetLeaderboard)
}
