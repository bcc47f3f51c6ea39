package model

import "time"

type CronJobType string

const JobTypeDailyDigest CronJobType = "daily_digest"

type CronJobStatus string

const (
	JobStatusPending   CronJobStatus = "pending"
	JobStatusRunning   CronJobStatus = "running"
	JobStatusCompleted CronJobStatus = "completed"
	JobStatusFailed    CronJobStatus = "failed"
)

// CronJob is one unit of scheduled work. At most one worker may hold a job
// in running state; the claim is a single atomic storage operation.
type CronJob struct {
	ID         string
	Type       CronJobType
	Status     CronJobStatus
	Result     *JobResult
	LastError  string
	CreatedAt  time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time
}

// JobResult is the aggregate outcome recorded on a completed job row.
type JobResult struct {
	Processed int    `json:"processed"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
	Reason    string `json:"reason,omitempty"`
}

// UserOutcome is the per-user delivery verdict inside one digest run.
type UserOutcome struct {
	UserID  string
	Outcome DeliveryOutcome
	Reason  string
}

type DeliveryOutcome string

const (
	OutcomeDelivered DeliveryOutcome = "delivered"
	OutcomeSkipped   DeliveryOutcome = "skipped"
	OutcomeFailed    DeliveryOutcome = "failed"
)
