package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phambaophuc/image-export/internal/models"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// NewJob builds a pending export job for a session.
func NewJob(sessionID string, settings models.ExportSettings, imagePaths []string, now time.Time) *models.ExportJob {
	return &models.ExportJob{
		ID:         uuid.New().String(),
		SessionID:  sessionID,
		ImagePaths: imagePaths,
		Settings:   settings,
		Status:     models.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// PublishJob records the job as pending and queues it for a worker.
func (q *QueueService) PublishJob(ctx context.Context, job *models.ExportJob) error {
	if err := q.jobs.SaveJob(ctx, job); err != nil {
		return err
	}

	jobBytes, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	err = q.channel.Publish(
		"",          // exchange
		q.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         jobBytes,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			MessageId:    job.ID,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish job: %w", err)
	}

	q.logger.Info("Job published to queue",
		zap.String("job_id", job.ID),
		zap.String("session_id", job.SessionID),
		zap.Int("image_count", len(job.ImagePaths)))
	return nil
}

// GetJob returns the stored record of a published job.
func (q *QueueService) GetJob(ctx context.Context, id string) (*models.ExportJob, error) {
	return q.jobs.GetJob(ctx, id)
}
