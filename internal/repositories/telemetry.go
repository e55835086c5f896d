package repositories

import (
	"context"
	"fmt"
	"time"

	"codecrackers/internal/models"

	"github.com/jmoiron/sqlx"
)

// TelemetryRepository is the append-only security event log. Suspicion
// scores are always re-derived from the stored events so historical audits
// stay accurate even if the weights change.
type TelemetryRepository interface {
	InsertEvent(ctx context.Context, event *models.TelemetryEvent) error
	AggregateSuspicion(ctx context.Context, since time.Time) ([]models.SuspicionEntry, error)
	RecentEvents(ctx context.Context, limit int) ([]models.TelemetryEvent, error)
}

type telemetryRepository struct {
	db *sqlx.DB
}

func NewTelemetryRepository(db *sqlx.DB) TelemetryRepository {
	return &telemetryRepository{db: db}
}

func (r *telemetryRepository) InsertEvent(ctx context.Context, event *models.TelemetryEvent) error {
	query := `INSERT INTO telemetry_events (user_id, problem_id, type, payload)
              VALUES (?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		event.UserID,
		event.ProblemID,
		event.Type,
		event.Payload,
	)
	if err != nil {
		return fmt.Errorf("failed to insert telemetry event: %w", err)
	}

	return nil
}

func (r *telemetryRepository) AggregateSuspicion(ctx context.Context, since time.Time) ([]models.SuspicionEntry, error) {
	query := `SELECT user_id,
                     SUM(CASE WHEN type = 'PASTE' THEN 1 ELSE 0 END) AS paste_count,
                     SUM(CASE WHEN type = 'TAB_SWITCH' THEN 1 ELSE 0 END) AS tab_switch_count,
                     SUM(CASE WHEN type = 'PASTE' THEN 10 WHEN type = 'TAB_SWITCH' THEN 5 ELSE 0 END) AS suspicion_score
              FROM telemetry_events
              WHERE created_at >= ?
              GROUP BY user_id
              ORDER BY suspicion_score DESC`

	var entries []models.SuspicionEntry
	if err := r.db.SelectContext(ctx, &entries, query, since); err != nil {
		return nil, fmt.Errorf("failed to aggregate suspicion scores: %w", err)
	}

	return entries, nil
}

func (r *telemetryRepository) RecentEvents(ctx context.Context, limit int) ([]models.TelemetryEvent, error) {
	query := `SELECT id, user_id, problem_id, type, payload, created_at
              FROM telemetry_events
              ORDER BY created_at DESC
              LIMIT ?`

	var events []models.TelemetryEvent
	if err := r.db.SelectContext(ctx, &events, query, limit); err != nil {
		return nil, fmt.Errorf("failed to get telemetry events: %w", err)
	}

	return events, nil
}
