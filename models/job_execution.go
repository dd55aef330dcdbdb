package models

import "time"

type JobStatus string

const (
	JobStatusExecuted JobStatus = "executed"
	JobStatusError    JobStatus = "error"
	JobStatusSkipped  JobStatus = "skipped"
)

// JobExecution records one run of a scheduled job.
type JobExecution struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	JobID      string    `json:"job_id" gorm:"not null;index"`
	Status     JobStatus `json:"status" gorm:"type:varchar(16);not null"`
	RunTime    time.Time `json:"run_time"`
	Duration   float64   `json:"duration"`
	Exception  string    `json:"exception" gorm:"type:text"`
	FinishedAt time.Time `json:"finished_at" gorm:"index"`
}
