package domain

import "context"

// QuestionGenerator is the port to the external generative-text service.
// Implementations return the parsed questions; partial parse failures reduce
// the yield without failing the call.
type QuestionGenerator interface {
	Generate(ctx context.Context, sourceText string, numQuestions int) ([]Question, error)
}

// QuestionRepository is the persistence port for generated question sets.
type QuestionRepository interface {
	// Save appends one row per question. meetingID is nil for ad-hoc sets
	// (webhook ingestion stores without a meeting association).
	Save(ctx context.Context, questions []Question, meetingID *string) error

	// GetByMeetingID returns all questions stored under meetingID in
	// insertion order. Returns a NOT_FOUND DomainError when no rows match.
	GetByMeetingID(ctx context.Context, meetingID string) ([]Question, error)
}

// TranscriptDownloader fetches a transcript file referenced by a webhook
// event.
type TranscriptDownloader interface {
	Download(ctx context.Context, url string, accessToken string) (string, error)
}
