package taskstatus

import "time"

// TaskType is the task whose status records describe resource downloads.
const TaskType = "archiver"

// TaskContext holds the portal endpoint and credentials used to query task status.
type TaskContext struct {
	SiteURL        string
	APIKey         string
	SiteUserAPIKey string
}

// Record is the outcome of the most recent download attempts for a resource.
// Attempts and FirstAttemptedAt describe the current run of failures; both reset
// after a successful download.
type Record struct {
	Success          bool
	Reason           string
	Attempts         int
	FirstAttemptedAt time.Time
	LastSuccessAt    *time.Time
	LastError        string
}
