package models

import "time"

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

type HealthCheck struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

type PreviewImage struct {
	ImagePath   string `json:"image_path"`
	ContentType string `json:"content_type"`
	Data        string `json:"data"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}
