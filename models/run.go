package models

import "time"

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunMode distinguishes incremental watermark-bounded passes from
// exhaustive full passes.
type RunMode string

const (
	RunModeIncremental RunMode = "incremental"
	RunModeFull        RunMode = "full"
)

// HarvestRun is the accounting record for one filter pass.
type HarvestRun struct {
	ID            int64      `json:"id" db:"id"`
	Filter        string     `json:"filter" db:"filter"`
	Mode          RunMode    `json:"mode" db:"mode"`
	StartedAt     time.Time  `json:"started_at" db:"started_at"`
	FinishedAt    *time.Time `json:"finished_at" db:"finished_at"`
	Status        RunStatus  `json:"status" db:"status"`
	LinksFound    int        `json:"links_found" db:"links_found"`
	ListingsSaved int        `json:"listings_saved" db:"listings_saved"`
	Skipped       int        `json:"skipped" db:"skipped"`
	ErrorsCount   int        `json:"errors_count" db:"errors_count"`
}

type LogLevel string

const (
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

type HarvestLog struct {
	ID        int64     `json:"id" db:"id"`
	RunID     *int64    `json:"run_id" db:"run_id"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	Level     LogLevel  `json:"level" db:"level"`
	Message   string    `json:"message" db:"message"`
	Filter    string    `json:"filter" db:"filter"`
}
