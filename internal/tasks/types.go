package tasks

import "time"

// Task Types
const (
	// Chat related tasks
	TaskTypeChatNotify = "chat:notify"

	// Forms related tasks
	TaskTypeFormArchive = "forms:archive"
	TaskTypeFormSync    = "forms:sync"
)

// Task Queues
const (
	QueueCritical = "critical" // For time-sensitive tasks like chat notifications
	QueueDefault  = "default"  // For regular tasks
	QueueLow      = "low"      // For background tasks like template sync
)

// Task Timeouts
const (
	TimeoutShort  = 1 * time.Minute
	TimeoutMedium = 5 * time.Minute
	TimeoutLong   = 30 * time.Minute
)

// Task Retry Settings
const (
	RetryMax     = 5
	RetryDefault = 3
	RetryMin     = 1
)

// Task Payloads
type ChatNotifyTask struct {
	ChatID     string   `json:"chat_id"`
	MessageID  string   `json:"message_id"`
	From       string   `json:"from"`
	Preview    string   `json:"preview"`
	Recipients []string `json:"recipients"`
}

type FormArchiveTask struct {
	ArchiveID   string    `json:"archive_id"`
	FormID      string    `json:"form_id"`
	AttemptNum  int       `json:"attempt_num"`
	LastAttempt time.Time `json:"last_attempt,omitempty"`
}

type FormSyncTask struct {
	FullSync bool `json:"full_sync"`
}
