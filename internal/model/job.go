package model

import "time"

// Refresh job statuses. A job only ever moves forward:
// queued → running → succeeded | failed.
const (
	JobQueued    = "queued"
	JobRunning   = "running"
	JobSucceeded = "succeeded"
	JobFailed    = "failed"
)

// Refresh trigger kinds, recorded in the job meta.
const (
	TriggerManual = "manual"
	TriggerAuto   = "auto"
)

// RefreshJob is one orchestration attempt at rebuilding a user's summary.
// Created on enqueue, mutated only by the running job itself, immutable once
// terminal.
type RefreshJob struct {
	ID                string            `json:"jobId"`
	UserID            string            `json:"-"`
	Status            string            `json:"status"`
	RequestedAt       time.Time         `json:"requestedAt"`
	StartedAt         *time.Time        `json:"startedAt,omitempty"`
	FinishedAt        *time.Time        `json:"finishedAt,omitempty"`
	ErrorMessage      *string           `json:"errorMessage,omitempty"`
	ChannelsTotal     int               `json:"channelsTotal"`
	ChannelsProcessed int               `json:"channelsProcessed"`
	Meta              map[string]string `json:"meta,omitempty"`
}

// Terminal reports whether the job has reached a final state.
func (j *RefreshJob) Terminal() bool {
	return j.Status == JobSucceeded || j.Status == JobFailed
}

// Active reports whether the job is still queued or running.
func (j *RefreshJob) Active() bool {
	return j.Status == JobQueued || j.Status == JobRunning
}

// EnqueueResponse is the API response for POST /api/youtube/refresh.
type EnqueueResponse struct {
	JobID   string `json:"jobId"`
	Status  string `json:"status"`
	Deduped bool   `json:"deduped"`
}
