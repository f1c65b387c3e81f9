package main

import (
	"time"

	"video_compositor/compositor/engine"
)

// RenderRequest is the POST body for /api/render: a full project plus an
// optional platform preset that overrides the project's output settings.
type RenderRequest struct {
	Project  engine.Project `json:"project"`
	Platform string         `json:"platform,omitempty"`

	// DryRun compiles and stores the command without executing it.
	DryRun bool `json:"dry_run,omitempty"`
}

// RenderResponse is returned by render and status endpoints.
type RenderResponse struct {
	JobID    string `json:"job_id"`
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	Command  string `json:"command,omitempty"`
	VideoURL string `json:"video_url,omitempty"`
}

// JobStatus tracks one render job through its lifecycle.
type JobStatus struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"` // pending, rendering, completed, failed
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Command   string `json:"command,omitempty"`
	VideoPath string `json:"video_path,omitempty"`
	Error     string `json:"error,omitempty"`
}
