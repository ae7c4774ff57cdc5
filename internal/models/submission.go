package models

import "time"

// Submission is one uploaded recording plus the delivery details. Built once
// per request and owned by a single pipeline run.
type Submission struct {
	ID             string    `json:"id"`
	AudioBytes     []byte    `json:"-"`
	AudioFilename  string    `json:"audio_filename"`
	DocumentType   string    `json:"document_type"`
	Context        string    `json:"context,omitempty"`
	RecipientEmail string    `json:"recipient_email"`
	Subject        string    `json:"subject"`
	ReceivedAt     time.Time `json:"received_at"`
}

// StorageObjectRef points at an uploaded object through a time-bounded URL.
type StorageObjectRef struct {
	ObjectName string    `json:"object_name"`
	AccessURL  string    `json:"access_url"`
	Expiry     time.Time `json:"expiry"`
}
