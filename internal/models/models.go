package models

import "time"

// Job statuses. A job leaves the pending state once, and ends in exactly
// one of the three terminal states.
const (
	JobPending   = "pending"
	JobRunning   = "running"
	JobSucceeded = "succeeded"
	JobFailed    = "failed"
	JobCancelled = "cancelled"
)

// Job represents one pipeline run started from the control panel
type Job struct {
	ID         string     `json:"id"`
	Request    JobRequest `json:"request"`
	Status     string     `json:"status"`
	Error      string     `json:"error,omitempty"`
	Log        []string   `json:"log"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// JobRequest selects the inputs and outputs of a pipeline run
type JobRequest struct {
	Inputs     []string `json:"inputs"`
	ImageRoots []string `json:"image_roots"`
	OutputDir  string   `json:"output_dir"`
	RowStart   int      `json:"row_start"`
	RowEnd     int      `json:"row_end"`
	Language   string   `json:"language,omitempty"`
	Categorize bool     `json:"categorize,omitempty"`
}

// Finished reports whether the job reached a terminal state.
func (j *Job) Finished() bool {
	switch j.Status {
	case JobSucceeded, JobFailed, JobCancelled:
		return true
	}
	return false
}
