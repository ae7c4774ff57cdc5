package models

// JobStatus is the remote transcription job state.
type JobStatus string

const (
	JobStatusNotStarted JobStatus = "NotStarted"
	JobStatusRunning    JobStatus = "Running"
	JobStatusSucceeded  JobStatus = "Succeeded"
	JobStatusFailed     JobStatus = "Failed"
)

// Terminal reports whether polling can stop.
func (s JobStatus) Terminal() bool {
	return s == JobStatusSucceeded || s == JobStatusFailed
}

// TranscriptionJob is the job record returned by the speech service.
type TranscriptionJob struct {
	Self        string             `json:"self"`
	DisplayName string             `json:"displayName,omitempty"`
	Status      JobStatus          `json:"status"`
	Links       TranscriptionLinks `json:"links"`
	Properties  JobProperties      `json:"properties"`
}

// TranscriptionLinks holds the job's related resources.
type TranscriptionLinks struct {
	Files string `json:"files"`
}

// JobProperties carries the service-reported error on failure.
type JobProperties struct {
	Error *JobError `json:"error,omitempty"`
}

// JobError is the failure reason reported by the speech service.
type JobError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// FilesURL returns the listing URL of the job's result files.
func (j TranscriptionJob) FilesURL() string {
	return j.Links.Files
}
