package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"codecrackers/internal/cache"
	"codecrackers/internal/logger"
	"codecrackers/internal/models"

	"github.com/jmoiron/sqlx"
)

type ProblemRepository interface {
	GetProblems(ctx context.Context) ([]models.ProblemListItem, error)
	GetProblemByID(ctx context.Context, problemID int) (*models.ProblemDetail, error)
	GetTestCases(ctx context.Context, problemID int) ([]models.TestCase, error)
}

type problemRepository struct {
	db    *sqlx.DB
	cache cache.Cache
}

func NewProblemRepository(db *sqlx.DB, cache cache.Cache) ProblemRepository {
	return &problemRepository{db: db, cache: cache}
}

func (r *problemRepository) GetProblems(ctx context.Context) ([]models.ProblemListItem, error) {
	query := `SELECT id, title, difficulty, category, display_order
              FROM problems
              ORDER BY display_order ASC`

	var problems []models.ProblemListItem
	if err := r.db.SelectContext(ctx, &problems, query); err != nil {
		return nil, fmt.Errorf("failed to get problems: %w", err)
	}

	return problems, nil
}

func (r *problemRepository) GetProblemByID(ctx context.Context, problemID int) (*models.ProblemDetail, error) {
	query := `SELECT id, title, difficulty, category, display_order, description
              FROM problems WHERE id = ?`

	var problem models.ProblemDetail
	if err := r.db.GetContext(ctx, &problem, query, problemID); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %d", models.ErrProblemNotFound, problemID)
		}
		return nil, fmt.Errorf("failed to get problem: %w", err)
	}

	return &problem, nil
}

// GetTestCases returns the problem's cases in grading order. Problems are
// immutable during grading, so a cached snapshot is safe to reuse.
func (r *problemRepository) GetTestCases(ctx context.Context, problemID int) ([]models.TestCase, error) {
	cacheKey := cache.TestCasesKey(problemID)

	var cached []models.TestCase
	if err := r.cache.Get(ctx, cacheKey, &cached); err == nil {
		return cached, nil
	}

	var exists int
	if err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM problems WHERE id = ?`, problemID); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %d", models.ErrProblemNotFound, problemID)
		}
		return nil, fmt.Errorf("failed to check problem: %w", err)
	}

	query := `SELECT id, input, expected_output
              FROM test_cases
              WHERE problem_id = ?
              ORDER BY position ASC`

	var testCases []models.TestCase
	if err := r.db.SelectContext(ctx, &testCases, query, problemID); err != nil {
		return nil, fmt.Errorf("failed to get test cases: %w", err)
	}

	if err := r.cache.Set(ctx, cacheKey, testCases, cache.TestCasesTTL); err != nil {
		logger.Log.Warn("Failed to cache test cases")
	}

	return testCases, nil
}
