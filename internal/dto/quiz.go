package dto

// GenerateMCQRequest is the body of POST /generate_mcq.
type GenerateMCQRequest struct {
	Text         string `json:"text"`
	NumQuestions int    `json:"num_questions"`
}

// QuestionResponse represents one generated question in the API response
type QuestionResponse struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// StatusResponse reports the outcome of an ingestion request
type StatusResponse struct {
	Status string `json:"status"`
}

// ErrorResponse represents an error in the API response
type ErrorResponse struct {
	Error string `json:"error"`
}

// TranscriptCompletedEvent is the event type acted upon by the webhook
// receiver; all other event types are acknowledged and ignored.
const TranscriptCompletedEvent = "recording.transcript_completed"

// TranscriptFileType marks the transcript entry in a recording's file list.
const TranscriptFileType = "TRANSCRIPT"

// WebhookEvent is the provider's callback payload. Only the fields the
// ingestion pipeline reads are modeled; everything else passes through
// undecoded.
type WebhookEvent struct {
	Event         string         `json:"event"`
	DownloadToken string         `json:"download_token"`
	Payload       WebhookPayload `json:"payload"`
}

type WebhookPayload struct {
	Object WebhookRecording `json:"object"`
}

type WebhookRecording struct {
	UUID           string          `json:"uuid"`
	Topic          string          `json:"topic"`
	RecordingFiles []RecordingFile `json:"recording_files"`
}

type RecordingFile struct {
	ID          string `json:"id"`
	FileType    string `json:"file_type"`
	DownloadURL string `json:"download_url"`
}

// TranscriptFile returns the first transcript-type entry of the recording's
// file list, or nil when the event carries none.
func (r WebhookRecording) TranscriptFile() *RecordingFile {
	for i := range r.RecordingFiles {
		if r.RecordingFiles[i].FileType == TranscriptFileType {
			return &r.RecordingFiles[i]
		}
	}
	return nil
}
