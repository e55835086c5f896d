package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"codecrackers/internal/models"

	"github.com/jmoiron/sqlx"
)

// ContestRepository backs the contest gate: a single singleton row read by
// every grading attempt and written only by the admin control plane.
type ContestRepository interface {
	// IsContestActive reads the gate. An absent row is treated as active
	// so an unconfigured contest stays available (fail-open).
	IsContestActive(ctx context.Context) (bool, error)
	SetContestActive(ctx context.Context, active bool) error
}

type contestRepository struct {
	db *sqlx.DB
}

func NewContestRepository(db *sqlx.DB) ContestRepository {
	return &contestRepository{db: db}
}

func (r *contestRepository) IsContestActive(ctx context.Context) (bool, error) {
	var config models.ContestConfig
	err := r.db.GetContext(ctx, &config,
		`SELECT is_contest_active FROM contest_config WHERE id = 1`)
	if err != nil {
		if err == sql.ErrNoRows {
			return true, nil
		}
		return false, fmt.Errorf("failed to read contest config: %w", err)
	}

	return config.IsContestActive, nil
}

func (r *contestRepository) SetContestActive(ctx context.Context, active bool) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO contest_config (id, is_contest_active) VALUES (1, ?)
         ON DUPLICATE KEY UPDATE is_contest_active = VALUES(is_contest_active)`,
		active,
	)
	if err != nil {
		return fmt.Errorf("failed to update contest config: %w", err)
	}

	return nil
}
