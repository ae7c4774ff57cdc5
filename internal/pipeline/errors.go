package pipeline

// Stage names, in execution order.
const (
	StageUpload     = "upload"
	StageCreateJob  = "create_transcription"
	StagePollJob    = "poll_transcription"
	StageTranscript = "extract_transcript"
	StageGenerate   = "generate_report"
	StageSendReport = "send_report"
)

// StageError is a pipeline failure attributed to the stage that raised it.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return e.Stage + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}
