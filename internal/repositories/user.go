package repositories

import (
	"context"
	"fmt"

	"codecrackers/internal/cache"
	"codecrackers/internal/logger"
	"codecrackers/internal/models"

	"github.com/jmoiron/sqlx"
)

// UserRepository is the scoring ledger. Points are only ever added through
// AwardFirstSolve; there is deliberately no way to set a score outright.
type UserRepository interface {
	// AwardFirstSolve atomically credits points and a solved count for the
	// user's first Accepted verdict on a problem. It reports whether the
	// award was applied; repeat solves of the same problem are a no-op.
	AwardFirstSolve(ctx context.Context, userID, problemID, points int) (bool, error)
	GetLeaderboard(ctx context.Context, limit int) ([]models.UserStats, error)
	GetAllUserStats(ctx context.Context) ([]models.UserStats, error)
	SetBanned(ctx context.Context, userID int, banned bool) error
}

type userRepository struct {
	db    *sqlx.DB
	cache cache.Cache
}

func NewUserRepository(db *sqlx.DB, cache cache.Cache) UserRepository {
	return &userRepository{db: db, cache: cache}
}

func (r *userRepository) AwardFirstSolve(ctx context.Context, userID, problemID, points int) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// The (user_id, problem_id) primary key makes the award idempotent:
	// a second Accepted submission inserts nothing and credits nothing.
	result, err := tx.ExecContext(ctx,
		`INSERT IGNORE INTO user_solved_problems (user_id, problem_id) VALUES (?, ?)`,
		userID, problemID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to record solve: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if inserted == 0 {
		return false, tx.Commit()
	}

	// Single atomic increment at the SQL layer: concurrent Accepted
	// verdicts for the same user must never collapse into one update.
	_, err = tx.ExecContext(ctx,
		`UPDATE user_stats
         SET total_score = total_score + ?, problems_solved = problems_solved + 1
         WHERE user_id = ?`,
		points, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to increment user stats: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit award: %w", err)
	}

	return true, nil
}

func (r *userRepository) GetLeaderboard(ctx context.Context, limit int) ([]models.UserStats, error) {
	cacheKey := cache.LeaderboardKey(limit)

	var cached []models.UserStats
	if err := r.cache.Get(ctx, cacheKey, &cached); err == nil {
		return cached, nil
	}

	query := `SELECT user_id, username, total_score, problems_solved, is_banned
              FROM user_stats
              WHERE is_banned = FALSE
              ORDER BY total_score DESC, problems_solved DESC
              LIMIT ?`

	var stats []models.UserStats
	if err := r.db.SelectContext(ctx, &stats, query, limit); err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	if err := r.cache.Set(ctx, cacheKey, stats, cache.LeaderboardTTL); err != nil {
		logger.Log.Warn("Failed to cache leaderboard")
	}

	return stats, nil
}

func (r *userRepository) GetAllUserStats(ctx context.Context) ([]models.UserStats, error) {
	query := `SELECT user_id, username, total_score, problems_solved, is_banned
              FROM user_stats
              ORDER BY total_score DESC`

	var stats []models.UserStats
	if err := r.db.SelectContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}

	return stats, nil
}

func (r *userRepository) SetBanned(ctx context.Context, userID int, banned bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE user_stats SET is_banned = ? WHERE user_id = ?`,
		banned, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update ban flag: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user not found: %d", userID)
	}

	return nil
}
