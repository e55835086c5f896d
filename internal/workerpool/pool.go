package workerpool

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"codecrackers/internal/logger"
	"codecrackers/internal/models"
	"codecrackers/internal/services"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Grader grades one submission end to end. Satisfied by
// services.GradingService; tests substitute a fake.
type Grader interface {
	Grade(ctx context.Context, req services.GradeRequest) (*models.Submission, error)
}

// GradingWorker consumes submission jobs from a redis stream and runs them
// through the grading pipeline.
type GradingWorker struct {
	id     string
	quit   chan bool
	rdb    *redis.Client
	stream string
	group  string
	grader Grader
}

func NewGradingWorker(id string, rdb *redis.Client, stream, group string, grader Grader) *GradingWorker {
	return &GradingWorker{
		id:     id,
		quit:   make(chan bool),
		rdb:    rdb,
		stream: stream,
		group:  group,
		grader: grader,
	}
}

// Start begins processing jobs from the stream
func (w *GradingWorker) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-w.quit:
				return
			default:
				entries, err := w.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
					Group:    w.group,
					Consumer: w.id,
					Streams:  []string{w.stream, ">"},
					Count:    1,
					Block:    5 * time.Second,
				}).Result()

				if err != nil {
					if err != redis.Nil && ctx.Err() == nil {
						logger.Log.Error("Redis operation failed",
							zap.String("worker_id", w.id),
							zap.Error(err))
					}
					continue
				}

				for _, stream := range entries {
					for _, msg := range stream.Messages {
						w.processJob(ctx, msg)
					}
				}
			}
		}
	}()
}

func (w *GradingWorker) Stop() {
	logger.Log.Info("Closing worker",
		zap.String("worker_id", w.id))
	w.quit <- true
	close(w.quit)
}

// maxGradeAttempts bounds how often one submission is retried after a
// sandbox failure before the job is abandoned.
const maxGradeAttempts = 3

func (w *GradingWorker) processJob(ctx context.Context, msg redis.XMessage) {
	logger.Log.Info("Processing submission job",
		zap.String("worker_id", w.id),
		zap.String("job_id", msg.ID))

	// Ack only once the job has been handled: graded, dropped or requeued.
	// Acking on receipt would lose the submission if grading then fails.
	defer func() {
		if err := w.rdb.XAck(ctx, w.stream, w.group, msg.ID).Err(); err != nil {
			logger.Log.Error("Failed to acknowledge job",
				zap.String("worker_id", w.id),
				zap.Error(err))
		}
	}()

	req, attempt, err := parseJob(msg)
	if err != nil {
		logger.Log.Error("Invalid submission job, skipping",
			zap.String("worker_id", w.id),
			zap.String("job_id", msg.ID),
			zap.Error(err))
		return
	}

	submission, err := w.grader.Grade(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrContestFrozen):
			// The gate closed between enqueue and pickup. No record, no
			// score, job dropped.
			logger.Log.Warn("Submission dropped, contest frozen",
				zap.String("submission_id", req.SubmissionID))
		case errors.Is(err, models.ErrExecutionFailed):
			// Transient sandbox trouble: nothing was recorded, so the job
			// can go back on the stream. The first-solve guard keeps a
			// retried Accepted verdict from double-counting.
			w.requeue(ctx, req, attempt, err)
		default:
			logger.Log.Error("Grading failed",
				zap.String("submission_id", req.SubmissionID),
				zap.Error(err))
		}
		return
	}

	logger.Log.Info("Finished processing submission job",
		zap.String("worker_id", w.id),
		zap.String("job_id", msg.ID),
		zap.String("submission_id", submission.ID),
		zap.String("verdict", submission.Verdict))
}

func (w *GradingWorker) requeue(ctx context.Context, req services.GradeRequest, attempt int, cause error) {
	if attempt+1 >= maxGradeAttempts {
		logger.Log.Error("Grading infrastructure failure, giving up on submission",
			zap.String("submission_id", req.SubmissionID),
			zap.Int("attempts", attempt+1),
			zap.Error(cause))
		return
	}

	err := w.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: w.stream,
		Values: map[string]interface{}{
			"submission_id": req.SubmissionID,
			"user_id":       req.UserID,
			"problem_id":    req.ProblemID,
			"language_id":   req.LanguageID,
			"source_code":   req.SourceCode,
			"attempt":       attempt + 1,
		},
	}).Err()
	if err != nil {
		logger.Log.Error("Failed to requeue submission after sandbox failure",
			zap.String("submission_id", req.SubmissionID),
			zap.Error(err))
		return
	}

	logger.Log.Warn("Sandbox failure, submission requeued",
		zap.String("submission_id", req.SubmissionID),
		zap.Int("attempt", attempt+1),
		zap.Error(cause))
}

func parseJob(msg redis.XMessage) (services.GradeRequest, int, error) {
	var req services.GradeRequest

	submissionID, ok := msg.Values["submission_id"].(string)
	if !ok || submissionID == "" {
		return req, 0, fmt.Errorf("missing submission_id")
	}

	userID, err := intField(msg, "user_id")
	if err != nil {
		return req, 0, err
	}
	problemID, err := intField(msg, "problem_id")
	if err != nil {
		return req, 0, err
	}
	languageID, err := intField(msg, "language_id")
	if err != nil {
		return req, 0, err
	}

	sourceCode, ok := msg.Values["source_code"].(string)
	if !ok || sourceCode == "" {
		return req, 0, fmt.Errorf("missing source_code")
	}

	// attempt is only present on requeued jobs.
	attempt := 0
	if _, ok := msg.Values["attempt"]; ok {
		if attempt, err = intField(msg, "attempt"); err != nil {
			return req, 0, err
		}
	}

	return services.GradeRequest{
		SubmissionID: submissionID,
		UserID:       userID,
		ProblemID:    problemID,
		LanguageID:   languageID,
		SourceCode:   sourceCode,
	}, attempt, nil
}

func intField(msg redis.XMessage, key string) (int, error) {
	raw, ok := msg.Values[key].(string)
	if !ok {
		return 0, fmt.Errorf("missing %s", key)
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

// GradingWorkerPool fans submission jobs out to a fixed set of workers on
// one consumer group. Submissions are independent, so workers need no
// coordination beyond the group itself.
type GradingWorkerPool struct {
	workers    []*GradingWorker
	numWorkers int
	rdb        *redis.Client
	stream     string
	group      string
	grader     Grader
}

func NewGradingWorkerPool(numWorkers int, rdb *redis.Client, stream, group string, grader Grader) *GradingWorkerPool {
	return &GradingWorkerPool{
		workers:    make([]*GradingWorker, numWorkers),
		numWorkers: numWorkers,
		rdb:        rdb,
		stream:     stream,
		group:      group,
		grader:     grader,
	}
}

func (p *GradingWorkerPool) Start(ctx context.Context) error {
	// Create consumer group if it doesn't exist
	_, err := p.rdb.XGroupCreateMkStream(ctx, p.stream, p.group, "$").Result()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	for i := 0; i < p.numWorkers; i++ {
		worker := NewGradingWorker(
			fmt.Sprintf("GradingWorker-%d", i+1),
			p.rdb,
			p.stream,
			p.group,
			p.grader,
		)

		worker.Start(ctx)
		p.workers[i] = worker

		logger.Log.Info("Starting grading worker",
			zap.String("worker_id", worker.id))
	}

	logger.Log.Info("Grading worker pool started",
		zap.Int("num_workers", p.numWorkers))

	return nil
}

// Stop terminates all workers in the pool
func (p *GradingWorkerPool) Stop() {
	for _, worker := range p.workers {
		worker.Stop()
	}
}
