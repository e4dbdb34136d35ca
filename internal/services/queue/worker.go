package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/phambaophuc/image-export/internal/models"
	"github.com/phambaophuc/image-export/internal/services/export"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// ErrSessionClosed fails jobs whose session was closed before they ran.
var ErrSessionClosed = errors.New("session was closed before the export ran")

func (q *QueueService) StartWorker(ctx context.Context, workerID int) error {
	msgs, err := q.channel.Consume(
		q.queueName,                        // queue
		fmt.Sprintf("worker-%d", workerID), // consumer
		false,                              // auto-ack
		false,                              // exclusive
		false,                              // no-local
		false,                              // no-wait
		nil,                                // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	q.logger.Info("Worker started", zap.Int("worker_id", workerID))

	go func() {
		for {
			select {
			case <-ctx.Done():
				q.logger.Info("Worker stopping", zap.Int("worker_id", workerID))
				return
			case msg, ok := <-msgs:
				if !ok {
					q.logger.Warn("Message channel closed", zap.Int("worker_id", workerID))
					return
				}

				q.processMessage(ctx, msg, workerID)
			}
		}
	}()

	return nil
}

func (q *QueueService) processMessage(ctx context.Context, msg amqp.Delivery, workerID int) {
	var job models.ExportJob
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		q.logger.Error("Failed to unmarshal job",
			zap.Error(err),
			zap.Int("worker_id", workerID))
		msg.Nack(false, false) // Don't requeue malformed messages
		return
	}

	q.logger.Info("Processing job",
		zap.String("job_id", job.ID),
		zap.Int("worker_id", workerID))

	if q.runJob(ctx, &job) {
		// the session is busy with an interactive export; hand the job back
		select {
		case <-ctx.Done():
		case <-time.After(q.retryDelay):
		}
		if err := msg.Nack(false, true); err != nil {
			q.logger.Error("Failed to requeue message",
				zap.String("job_id", job.ID),
				zap.Error(err))
		}
		return
	}

	if err := msg.Ack(false); err != nil {
		q.logger.Error("Failed to ack message",
			zap.String("job_id", job.ID),
			zap.Error(err))
	}
}

// runJob exports the job through its session's orchestrator and stores the
// final record. Jobs of one session run one after another. Failed exports are
// not retried; the result is true only when the job must be requeued because
// the session was exporting outside the queue.
func (q *QueueService) runJob(ctx context.Context, job *models.ExportJob) bool {
	orchestrator, ok := q.exports.Lookup(job.SessionID)
	if !ok {
		q.finishJob(ctx, job, nil, ErrSessionClosed)
		return false
	}

	unlock := q.sessions.lock(job.SessionID)
	defer unlock()

	job.Status = models.StatusProcessing
	job.UpdatedAt = q.now()
	q.storeJobResult(ctx, job)

	runCtx := ctx
	if q.engineTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, q.engineTimeout)
		defer cancel()
	}

	outcome, err := orchestrator.SubmitExport(runCtx, job.Settings, job.ImagePaths)
	if errors.Is(err, export.ErrExportInProgress) {
		q.logger.Info("Session busy, requeueing job",
			zap.String("job_id", job.ID),
			zap.String("session_id", job.SessionID))
		job.Status = models.StatusPending
		job.UpdatedAt = q.now()
		q.storeJobResult(ctx, job)
		return true
	}

	q.finishJob(ctx, job, outcome, err)
	return false
}

func (q *QueueService) finishJob(ctx context.Context, job *models.ExportJob, outcome *models.ExportOutcome, err error) {
	if err != nil {
		job.Status = models.StatusFailed
		job.Error = err.Error()
		q.logger.Error("Job processing failed",
			zap.String("job_id", job.ID),
			zap.Error(err))
	} else {
		job.Status = models.StatusCompleted
		job.Result = outcome
		q.logger.Info("Job completed successfully",
			zap.String("job_id", job.ID))
	}

	job.UpdatedAt = q.now()
	q.storeJobResult(ctx, job)
}

func (q *QueueService) storeJobResult(ctx context.Context, job *models.ExportJob) {
	if err := q.jobs.SaveJob(ctx, job); err != nil {
		q.logger.Error("Failed to store job result",
			zap.String("job_id", job.ID),
			zap.String("status", job.Status),
			zap.Error(err))
	}
}
