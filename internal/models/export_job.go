package models

import "time"

// ExportJob is an export request handed to the queue worker. The settings it
// carries have already passed validation when the job is published.
type ExportJob struct {
	ID         string         `json:"id"`
	SessionID  string         `json:"session_id,omitempty"`
	ImagePaths []string       `json:"image_paths"`
	Settings   ExportSettings `json:"settings"`
	Status     string         `json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	Result     *ExportOutcome `json:"result,omitempty"`
	Error      string         `json:"error,omitempty"`
}

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusCancelled  = "cancelled"
)

// ExportOutcome describes one finished call to the conversion engine.
type ExportOutcome struct {
	Status      string    `json:"status"`
	OutputDir   string    `json:"output_dir,omitempty"`
	ImageCount  int       `json:"image_count"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}
