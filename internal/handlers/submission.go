package handlers

import (
	"errors"
	"net/http"

	"codecrackers/internal/logger"
	"codecrackers/internal/middlewares"
	"codecrackers/internal/models"
	"codecrackers/internal/repositories"
	"codecrackers/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type SubmissionHandler struct {
	contestRepo    repositories.ContestRepository
	problemRepo    repositories.ProblemRepository
	submissionRepo repositories.SubmissionRepository
	redis          *redis.Client
	stream         string
}

func NewSubmissionHandler(
	contestRepo repositories.ContestRepository,
	problemRepo repositories.ProblemRepository,
	submissionRepo repositories.SubmissionRepository,
	rdb *redis.Client,
	stream string,
) *SubmissionHandler {
	return &SubmissionHandler{
		contestRepo:    contestRepo,
		problemRepo:    problemRepo,
		submissionRepo: submissionRepo,
		redis:          rdb,
		stream:         stream,
	}
}

// CreateSubmission validates the request, checks the contest gate and
// queues the submission for grading. A frozen contest is rejected here with
// no side effects of any kind: nothing is enqueued, recorded or scored.
func (h *SubmissionHandler) CreateSubmission(c *gin.Context) {
	userID := c.GetInt(middlewares.UserContextKey)

	var req models.SubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := req.ValidateRequest(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !services.IsLanguageSupported(req.LanguageID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported language"})
		return
	}

	active, err := h.contestRepo.IsContestActive(c.Request.Context())
	if err != nil {
		logger.Log.Error("Failed to read contest gate", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process submission"})
		return
	}
	if !active {
		c.JSON(http.StatusForbidden, gin.H{
			"verdict": "Contest Frozen",
			"message": "The contest has been paused by the administrator. No submissions allowed.",
		})
		return
	}

	if _, err := h.problemRepo.GetProblemByID(c.Request.Context(), req.ProblemID); err != nil {
		if errors.Is(err, models.ErrProblemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Problem not found"})
			return
		}
		logger.Log.Error("Failed to look up problem", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process submission"})
		return
	}

	submissionID := uuid.NewString()

	err = h.redis.XAdd(c.Request.Context(), &redis.XAddArgs{
		Stream: h.stream,
		ID:     "*", // Auto-generate ID
		Values: map[string]interface{}{
			"submission_id": submissionID,
			"user_id":       userID,
			"problem_id":    req.ProblemID,
			"language_id":   req.LanguageID,
			"source_code":   req.SourceCode,
		},
	}).Err()

	if err != nil {
		logger.Log.Error("Failed to add submission to Redis stream",
			zap.String("submission_id", submissionID),
			zap.Error(err))

		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue submission"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message":       "Submission queued for processing",
		"submission_id": submissionID,
	})
}

// GetSubmission returns the final record for a graded submission. Hidden
// test data is never exposed: only the verdict, the position of the first
// failure and compiler diagnostics leave this endpoint.
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	userID := c.GetInt(middlewares.UserContextKey)
	isAdmin := c.GetBool(middlewares.AdminContextKey)

	submission, err := h.submissionRepo.GetSubmissionByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrSubmissionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found or not graded yet"})
			return
		}
		logger.Log.Error("Failed to get submission",
			zap.String("submission_id", c.Param("id")),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve submission details"})
		return
	}

	if submission.UserID != userID && !isAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	response := gin.H{
		"id":          submission.ID,
		"verdict":     submission.Verdict,
		"source_code": submission.SourceCode,
		"language":    services.LanguageName(submission.LanguageID),
	}

	if submission.FailedCase != nil {
		response["failed_case"] = *submission.FailedCase
	}
	if submission.Verdict == models.VerdictCompileError && submission.CompileOutput != nil {
		response["compile_output"] = *submission.CompileOutput
	}

	c.JSON(http.StatusOK, response)
}

// GetMySubmissions lists the caller's grading history for one problem.
func (h *SubmissionHandler) GetMySubmissions(c *gin.Context) {
	userID := c.GetInt(middlewares.UserContextKey)

	var query struct {
		ProblemID int `form:"problem_id" binding:"required"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "problem_id query parameter is required"})
		return
	}

	submissions, err := h.submissionRepo.GetSubmissionsByUserAndProblem(c.Request.Context(), userID, query.ProblemID)
	if err != nil {
		logger.Log.Error("Failed to get user submissions",
			zap.Int("user_id", userID),
			zap.Int("problem_id", query.ProblemID),
			zap.Error(err))

		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve submission history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"submissions": submissions,
		"count":       len(submissions),
	})
}

func (h *SubmissionHandler) RegisterRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	submissionGroup := router.Group("/submissions")
	submissionGroup.Use(auth)
	{
		submissionGroup.POST("", h.CreateSubmission)
		submissionGroup.GET("/:id", h.GetSubmission)
		submissionGroup.GET("", h.GetMySubmissions)
	}
}
