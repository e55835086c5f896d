package handlers

import (
	"errors"
	"net/http"

	"codecrackers/internal/logger"
	"codecrackers/internal/models"
	"codecrackers/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RunHandler executes code against custom input without grading or
// persistence. Useful while drafting a solution.
type RunHandler struct {
	executor services.ExecutionClient
}

func NewRunHandler(executor services.ExecutionClient) *RunHandler {
	return &RunHandler{executor: executor}
}

type runRequest struct {
	LanguageID int    `json:"language_id" binding:"required"`
	SourceCode string `json:"source_code" binding:"required"`
	Stdin      string `json:"stdin"`
}

func (h *RunHandler) RunCode(c *gin.Context) {
	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	output, err := h.executor.Execute(c.Request.Context(), req.LanguageID, req.SourceCode, req.Stdin)
	if err != nil {
		if errors.Is(err, models.ErrUnsupportedLanguage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported language"})
			return
		}
		logger.Log.Error("Ad-hoc execution failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Execution failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"output":         output.Stdout,
		"error":          output.Stderr,
		"compile_output": output.CompileOutput,
	})
}

func (h *RunHandler) RegisterRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	router.POST("/run", auth, h.RunCode)
}
