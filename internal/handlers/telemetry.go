package handlers

import (
	"net/http"

	"codecrackers/internal/middlewares"
	"codecrackers/internal/models"
	"codecrackers/internal/services"

	"github.com/gin-gonic/gin"
)

type TelemetryHandler struct {
	telemetry *services.TelemetryService
}

func NewTelemetryHandler(telemetry *services.TelemetryService) *TelemetryHandler {
	return &TelemetryHandler{telemetry: telemetry}
}

// RecordEvent ingests one editor event. Fire-and-forget: the event is
// buffered and the request returns immediately, it never waits on storage.
func (h *TelemetryHandler) RecordEvent(c *gin.Context) {
	userID := c.GetInt(middlewares.UserContextKey)

	var req models.TelemetryEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event := models.TelemetryEvent{
		UserID:    userID,
		ProblemID: req.ProblemID,
		Type:      req.Type,
		Payload:   req.Payload,
	}

	if err := h.telemetry.Record(event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "Event recorded"})
}

func (h *TelemetryHandler) RegisterRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	router.POST("/telemetry", auth, h.RecordEvent)
}
