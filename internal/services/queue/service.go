package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/phambaophuc/image-export/internal/config"
	"github.com/phambaophuc/image-export/internal/models"
	"github.com/phambaophuc/image-export/internal/services/export"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// Orchestrators looks up the export orchestrator of an open session.
type Orchestrators interface {
	Lookup(sessionID string) (*export.Orchestrator, bool)
}

// JobStore keeps export job records so clients can poll them.
type JobStore interface {
	SaveJob(ctx context.Context, job *models.ExportJob) error
	GetJob(ctx context.Context, id string) (*models.ExportJob, error)
}

// QueueService publishes export jobs to RabbitMQ and runs them on workers.
type QueueService struct {
	conn          *amqp.Connection
	channel       *amqp.Channel
	logger        *zap.Logger
	queueName     string
	workers       int
	engineTimeout time.Duration
	retryDelay    time.Duration
	exports       Orchestrators
	jobs          JobStore
	sessions      *sessionLocks
	now           func() time.Time
}

func NewQueueService(cfg *config.Config, exports Orchestrators, jobs JobStore, logger *zap.Logger) (*QueueService, error) {
	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	queueName := cfg.RabbitMQ.QueueName

	_, err = channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	// one unacknowledged export per consumer
	if err := channel.Qos(1, 0, false); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set qos: %w", err)
	}

	q := newQueueService(exports, jobs, logger)
	q.conn = conn
	q.channel = channel
	q.queueName = queueName
	q.workers = max(cfg.RabbitMQ.Workers, 1)
	q.engineTimeout = cfg.Export.EngineTimeout
	return q, nil
}

func newQueueService(exports Orchestrators, jobs JobStore, logger *zap.Logger) *QueueService {
	return &QueueService{
		logger:     logger,
		workers:    1,
		retryDelay: time.Second,
		exports:    exports,
		jobs:       jobs,
		sessions:   newSessionLocks(),
		now:        time.Now,
	}
}

// StartWorkers starts the configured number of consumers. They stop when ctx
// is cancelled.
func (q *QueueService) StartWorkers(ctx context.Context) error {
	for i := 1; i <= q.workers; i++ {
		if err := q.StartWorker(ctx, i); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the queue connection
func (q *QueueService) Close() error {
	if q.channel != nil {
		q.channel.Close()
	}
	if q.conn != nil {
		return q.conn.Close()
	}
	return nil
}
