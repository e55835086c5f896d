package services

import (
	"context"
	"time"

	"codecrackers/internal/logger"
	"codecrackers/internal/models"
	"codecrackers/internal/repositories"

	"go.uber.org/zap"
)

// TelemetryService decouples security-event ingestion from everything else.
// Record never blocks a caller: events go through a bounded buffer and the
// oldest queued event is dropped on overflow. Losing an event degrades
// suspicion accuracy; stalling a submission would be worse.
type TelemetryService struct {
	events repositories.TelemetryRepository
	queue  chan models.TelemetryEvent
	done   chan struct{}
}

func NewTelemetryService(events repositories.TelemetryRepository, bufferSize int) *TelemetryService {
	if bufferSize <= 0 {
		bufferSize = 1024
	}

	return &TelemetryService{
		events: events,
		queue:  make(chan models.TelemetryEvent, bufferSize),
		done:   make(chan struct{}),
	}
}

// Start launches the background appender. It runs until ctx is canceled,
// then drains whatever is still buffered.
func (s *TelemetryService) Start(ctx context.Context) {
	go func() {
		defer close(s.done)
		for {
			select {
			case event := <-s.queue:
				s.append(event)
			case <-ctx.Done():
				for {
					select {
					case event := <-s.queue:
						s.append(event)
					default:
						return
					}
				}
			}
		}
	}()
}

// Wait blocks until the background appender has drained and exited.
func (s *TelemetryService) Wait() {
	<-s.done
}

// Record validates and buffers one event. Fire-and-forget: the only error
// a caller can see is a validation failure.
func (s *TelemetryService) Record(event models.TelemetryEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}

	for {
		select {
		case s.queue <- event:
			return nil
		default:
		}

		// Buffer full: drop the oldest queued event to make room.
		select {
		case dropped := <-s.queue:
			logger.Log.Warn("Telemetry buffer full, dropping oldest event",
				zap.Int("user_id", dropped.UserID),
				zap.String("type", dropped.Type))
		default:
		}
	}
}

func (s *TelemetryService) append(event models.TelemetryEvent) {
	if err := s.events.InsertEvent(context.Background(), &event); err != nil {
		logger.Log.Error("Failed to append telemetry event",
			zap.Int("user_id", event.UserID),
			zap.String("type", event.Type),
			zap.Error(err))
	}
}

// SuspicionScores re-aggregates the event log into a ranked moderation
// view. Stateless and idempotent: same log, same ranking.
func (s *TelemetryService) SuspicionScores(ctx context.Context, since time.Time) ([]models.SuspicionEntry, error) {
	if since.IsZero() {
		since = time.Unix(0, 0)
	}
	return s.events.AggregateSuspicion(ctx, since)
}

func (s *TelemetryService) RecentEvents(ctx context.Context, limit int) ([]models.TelemetryEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.events.RecentEvents(ctx, limit)
}
