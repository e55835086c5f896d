package handlers

import (
	"net/http"
	"strconv"
	"time"

	"codecrackers/internal/logger"
	"codecrackers/internal/repositories"
	"codecrackers/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler is the moderation control plane: the contest gate toggle,
// suspicion rankings, the raw telemetry log and user bans.
type AdminHandler struct {
	contestRepo repositories.ContestRepository
	userRepo    repositories.UserRepository
	telemetry   *services.TelemetryService
}

func NewAdminHandler(
	contestRepo repositories.ContestRepository,
	userRepo repositories.UserRepository,
	telemetry *services.TelemetryService,
) *AdminHandler {
	return &AdminHandler{
		contestRepo: contestRepo,
		userRepo:    userRepo,
		telemetry:   telemetry,
	}
}

type contestToggleRequest struct {
	IsContestActive *bool `json:"is_contest_active" binding:"required"`
}

func (h *AdminHandler) GetContestStatus(c *gin.Context) {
	active, err := h.contestRepo.IsContestActive(c.Request.Context())
	if err != nil {
		logger.Log.Error("Failed to read contest gate", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read contest status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"is_contest_active": active})
}

func (h *AdminHandler) SetContestStatus(c *gin.Context) {
	var req contestToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "is_contest_active is required"})
		return
	}

	if err := h.contestRepo.SetContestActive(c.Request.Context(), *req.IsContestActive); err != nil {
		logger.Log.Error("Failed to toggle contest gate", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update contest status"})
		return
	}

	logger.Log.Info("Contest gate toggled",
		zap.Bool("is_contest_active", *req.IsContestActive))

	c.JSON(http.StatusOK, gin.H{"is_contest_active": *req.IsContestActive})
}

// GetSuspicionScores returns the ranked moderation view, recomputed from
// the event log on every call. An optional since parameter (RFC 3339)
// bounds the window.
func (h *AdminHandler) GetSuspicionScores(c *gin.Context) {
	var since time.Time
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "since must be an RFC 3339 timestamp"})
			return
		}
		since = parsed
	}

	entries, err := h.telemetry.SuspicionScores(c.Request.Context(), since)
	if err != nil {
		logger.Log.Error("Failed to aggregate suspicion scores", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute suspicion scores"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"suspicious_users": entries})
}

func (h *AdminHandler) GetTelemetryLog(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	events, err := h.telemetry.RecentEvents(c.Request.Context(), limit)
	if err != nil {
		logger.Log.Error("Failed to get telemetry log", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve telemetry log"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (h *AdminHandler) GetUsers(c *gin.Context) {
	stats, err := h.userRepo.GetAllUserStats(c.Request.Context())
	if err != nil {
		logger.Log.Error("Failed to get user stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": stats})
}

type banRequest struct {
	IsBanned *bool `json:"is_banned" binding:"required"`
}

// SetUserBan flags or unflags a user for exclusion from the official
// ranking. Historical scores are untouched either way.
func (h *AdminHandler) SetUserBan(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var req banRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "is_banned is required"})
		return
	}

	if err := h.userRepo.SetBanned(c.Request.Context(), userID, *req.IsBanned); err != nil {
		logger.Log.Error("Failed to update ban flag",
			zap.Int("user_id", userID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": userID, "is_banned": *req.IsBanned})
}

func (h *AdminHandler) RegisterRoutes(router *gin.Engine, auth, admin gin.HandlerFunc) {
	adminGroup := router.Group("/admin")
	adminGroup.Use(auth, admin)
	{
		adminGroup.GET("/contest", h.GetContestStatus)
		adminGroup.PUT("/contest", h.SetContestStatus)
		adminGroup.GET("/suspicion", h.GetSuspicionScores)
		adminGroup.GET("/telemetry", h.GetTelemetryLog)
		adminGroup.GET("/users", h.GetUsers)
		adminGroup.PUT("/users/:id/ban", h.SetUserBan)
	}
}
