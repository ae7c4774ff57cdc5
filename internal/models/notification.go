package models

import "time"

// Email kinds sent per submission.
const (
	EmailKindReport  = "report"
	EmailKindFailure = "failure"
)

// Notification outcome statuses.
const (
	NotificationSent   = "sent"
	NotificationFailed = "failed"
)

// NotificationOutcome records what the recipient ended up receiving for one
// submission: the report, or a failure notice carrying the original error.
type NotificationOutcome struct {
	SubmissionID   string    `json:"submission_id"`
	Kind           string    `json:"kind"`
	RecipientEmail string    `json:"recipient_email"`
	Subject        string    `json:"subject"`
	Status         string    `json:"status"`
	ErrorMessage   string    `json:"error_message,omitempty"` // pipeline error carried in a failure email
	SendError      string    `json:"send_error,omitempty"`
	At             time.Time `json:"at"`
}

// Delivered reports whether an email actually left for the recipient.
func (o NotificationOutcome) Delivered() bool {
	return o.Status == NotificationSent
}
