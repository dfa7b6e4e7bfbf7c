package models

import "time"

// JobType labels the asynchronous operations the console enqueues.
type JobType string

const (
	JobTypeRoleAssignment  JobType = "role_assignment"
	JobTypeBulkConnections JobType = "bulk_connections"
	JobTypeBulkDelete      JobType = "bulk_delete"
	JobTypeUpload          JobType = "upload"
)

// JobState tracks the poller-observed lifecycle of a server-side job.
type JobState string

const (
	JobStateQueued     JobState = "QUEUED"
	JobStateProcessing JobState = "PROCESSING"
	JobStateCompleted  JobState = "COMPLETED"
	JobStateFailed     JobState = "FAILED"
	JobStateStale      JobState = "STALE"
)

// TrackedJob is the client-side handle for one queued server job.
type TrackedJob struct {
	ID           string    `json:"id"`
	Type         JobType   `json:"type"`
	State        JobState  `json:"state"`
	Total        int       `json:"total"`
	Current      int       `json:"current"`
	Status       string    `json:"status,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	PollFailures int       `json:"poll_failures,omitempty"`
}

// JobProgress is one decoded status poll for a tracked job.
type JobProgress struct {
	Current          int
	Status           string
	Completed        bool
	Failed           bool
	ResultSuccessful int
	ResultFailed     int
}
