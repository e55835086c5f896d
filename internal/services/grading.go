package services

import (
	"context"
	"fmt"

	"codecrackers/internal/logger"
	"codecrackers/internal/models"
	"codecrackers/internal/repositories"

	"go.uber.org/zap"
)

// GradeRequest identifies one submission to grade. The submission ID is
// assigned when the request is accepted, before grading starts, so callers
// can poll for the record once a verdict lands.
type GradeRequest struct {
	SubmissionID string
	UserID       int
	ProblemID    int
	LanguageID   int
	SourceCode   string
}

// GradingService is the orchestrator: gate snapshot, then evaluation, then
// exactly one record per completed attempt, then the scoring side effect
// for Accepted verdicts.
type GradingService struct {
	contest     repositories.ContestRepository
	problems    repositories.ProblemRepository
	submissions repositories.SubmissionRepository
	users       repositories.UserRepository
	judge       *JudgeService
	awardPoints int
}

func NewGradingService(
	contest repositories.ContestRepository,
	problems repositories.ProblemRepository,
	submissions repositories.SubmissionRepository,
	users repositories.UserRepository,
	judge *JudgeService,
	awardPoints int,
) *GradingService {
	return &GradingService{
		contest:     contest,
		problems:    problems,
		submissions: submissions,
		users:       users,
		judge:       judge,
		awardPoints: awardPoints,
	}
}

// Grade runs the full pipeline for one submission. The contest gate is read
// once up front: a freeze toggled mid-grading does not abort in-flight work.
// Infrastructure failures surface as errors and leave no record behind;
// verdicts are always persisted exactly once.
func (s *GradingService) Grade(ctx context.Context, req GradeRequest) (*models.Submission, error) {
	active, err := s.contest.IsContestActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read contest gate: %w", err)
	}
	if !active {
		return nil, models.ErrContestFrozen
	}

	cases, err := s.problems.GetTestCases(ctx, req.ProblemID)
	if err != nil {
		return nil, err
	}

	result, err := s.judge.Evaluate(ctx, req.LanguageID, req.SourceCode, cases)
	if err != nil {
		return nil, err
	}

	// The caller went away mid-grading: let the sandbox work finish but
	// discard the result instead of persisting a verdict nobody asked for.
	if ctx.Err() != nil {
		logger.Log.Warn("Discarding grading result, caller canceled",
			zap.String("submission_id", req.SubmissionID))
		return nil, ctx.Err()
	}

	submission := &models.Submission{
		ID:            req.SubmissionID,
		UserID:        req.UserID,
		ProblemID:     req.ProblemID,
		LanguageID:    req.LanguageID,
		SourceCode:    req.SourceCode,
		Verdict:       result.Verdict,
		FailedCase:    result.FailedCase,
		CompileOutput: result.CompileOutput,
	}

	if err := s.submissions.CreateSubmission(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to persist submission: %w", err)
	}

	if result.Verdict == models.VerdictAccepted {
		awarded, err := s.users.AwardFirstSolve(ctx, req.UserID, req.ProblemID, s.awardPoints)
		if err != nil {
			// The record is already durable and the solved-set insert is
			// idempotent, so a retry of the award cannot double-count.
			logger.Log.Error("Failed to award accepted submission",
				zap.String("submission_id", req.SubmissionID),
				zap.Int("user_id", req.UserID),
				zap.Error(err))
			return submission, fmt.Errorf("failed to award points: %w", err)
		}

		if awarded {
			logger.Log.Info("First solve awarded",
				zap.Int("user_id", req.UserID),
				zap.Int("problem_id", req.ProblemID),
				zap.Int("points", s.awardPoints))
		}
	}

	return submission, nil
}
