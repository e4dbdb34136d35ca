package queue

import (
	"errors"
	"fmt"
)

var errNoChannel = errors.New("queue channel not available")

// GetQueueStats reports the broker's view of the export queue next to the
// local worker setup.
func (q *QueueService) GetQueueStats() (map[string]interface{}, error) {
	if q.channel == nil {
		return nil, errNoChannel
	}

	info, err := q.channel.QueueInspect(q.queueName)
	if err != nil {
		return nil, fmt.Errorf("inspect export queue %q: %w", q.queueName, err)
	}

	return map[string]interface{}{
		"name":            info.Name,
		"pending_jobs":    info.Messages,
		"consumers":       info.Consumers,
		"workers":         q.workers,
		"active_sessions": q.sessions.len(),
		"engine_timeout":  q.engineTimeout.String(),
	}, nil
}

// HealthCheck reports whether exports can still be published.
func (q *QueueService) HealthCheck() string {
	switch {
	case q.conn == nil || q.conn.IsClosed():
		return "unhealthy: connection closed"
	case q.channel == nil:
		return "unhealthy: " + errNoChannel.Error()
	}
	return "healthy"
}
