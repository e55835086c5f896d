package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"codecrackers/internal/models"

	"github.com/jmoiron/sqlx"
)

// SubmissionRepository is the append-only record store for grading
// attempts. No update or delete is exposed: a persisted verdict is final.
type SubmissionRepository interface {
	CreateSubmission(ctx context.Context, submission *models.Submission) error
	GetSubmissionByID(ctx context.Context, submissionID string) (*models.Submission, error)
	GetSubmissionsByUserAndProblem(ctx context.Context, userID, problemID int) ([]models.SubmissionListItem, error)
}

type submissionRepository struct {
	db *sqlx.DB
}

func NewSubmissionRepository(db *sqlx.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) CreateSubmission(ctx context.Context, submission *models.Submission) error {
	query := `INSERT INTO submissions (id, user_id, problem_id, language_id, source_code, verdict, failed_case, compile_output)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		submission.ID,
		submission.UserID,
		submission.ProblemID,
		submission.LanguageID,
		submission.SourceCode,
		submission.Verdict,
		submission.FailedCase,
		submission.CompileOutput,
	)
	if err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}

	return nil
}

func (r *submissionRepository) GetSubmissionByID(ctx context.Context, submissionID string) (*models.Submission, error) {
	query := `SELECT id, user_id, problem_id, language_id, source_code, verdict, failed_case, compile_output, created_at
              FROM submissions WHERE id = ?`

	var submission models.Submission
	if err := r.db.GetContext(ctx, &submission, query, submissionID); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", models.ErrSubmissionNotFound, submissionID)
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	return &submission, nil
}

func (r *submissionRepository) GetSubmissionsByUserAndProblem(ctx context.Context, userID, problemID int) ([]models.SubmissionListItem, error) {
	query := `SELECT id, language_id, verdict, failed_case, created_at
              FROM submissions
              WHERE user_id = ? AND problem_id = ?
              ORDER BY created_at DESC`

	var submissions []models.SubmissionListItem
	if err := r.db.SelectContext(ctx, &submissions, query, userID, problemID); err != nil {
		return nil, fmt.Errorf("failed to get user submissions: %w", err)
	}

	return submissions, nil
}
