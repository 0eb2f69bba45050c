package models

import "time"

type CommandType string

const (
	CmdHarvestNow CommandType = "harvest_now"
	CmdFullNow    CommandType = "full_now"
	CmdPause      CommandType = "pause"
	CmdResume     CommandType = "resume"
)

// Command is an operator instruction queued through the operational
// store and polled by the scheduler.
type Command struct {
	ID          int64       `json:"id" db:"id"`
	Command     CommandType `json:"command" db:"command"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	ProcessedAt *time.Time  `json:"processed_at" db:"processed_at"`
}
