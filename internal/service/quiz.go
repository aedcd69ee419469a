package service

import (
	"context"
	"encoding/json"
	"strings"

	"meetquiz/internal/cache"
	"meetquiz/internal/config"
	"meetquiz/internal/domain"
	"meetquiz/internal/dto"
	"meetquiz/internal/logger"
	"meetquiz/internal/transcript"

	"go.uber.org/zap"
)

// QuizService defines the interface for question generation and retrieval
// operations.
type QuizService interface {
	// GenerateFromText generates questions from raw text without persisting
	// them.
	GenerateFromText(ctx context.Context, text string, numQuestions int) ([]dto.QuestionResponse, error)

	// IngestTranscriptFile extracts text from a subtitle file on disk,
	// generates the configured number of questions, and persists them under
	// meetingID.
	IngestTranscriptFile(ctx context.Context, meetingID string, path string) error

	// HandleWebhookEvent processes a provider callback. Events other than
	// the transcript-completed kind are ignored without error. Returned
	// errors are for logging only; the webhook HTTP surface always
	// acknowledges.
	HandleWebhookEvent(ctx context.Context, event dto.WebhookEvent) error

	// GetQuizByMeetingID returns the persisted question set for a meeting.
	GetQuizByMeetingID(ctx context.Context, meetingID string) ([]dto.QuestionResponse, error)
}

// quizService implements QuizService
type quizService struct {
	generator  domain.QuestionGenerator
	repo       domain.QuestionRepository
	downloader domain.TranscriptDownloader
	cache      domain.Cache // nil when Redis is not configured
	cfg        *config.Config
}

// NewQuizService creates a new instance of quizService
func NewQuizService(
	generator domain.QuestionGenerator,
	repo domain.QuestionRepository,
	downloader domain.TranscriptDownloader,
	quizCache domain.Cache,
	cfg *config.Config,
) QuizService {
	return &quizService{
		generator:  generator,
		repo:       repo,
		downloader: downloader,
		cache:      quizCache,
		cfg:        cfg,
	}
}

// GenerateFromText implements QuizService
func (s *quizService) GenerateFromText(ctx context.Context, text string, numQuestions int) ([]dto.QuestionResponse, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.NewInvalidInputError("text is required")
	}
	if numQuestions < 1 {
		return nil, domain.NewInvalidInputError("num_questions must be at least 1")
	}

	questions, err := s.generator.Generate(ctx, text, numQuestions)
	if err != nil {
		return nil, err
	}
	return toQuestionResponses(questions), nil
}

// IngestTranscriptFile implements QuizService
func (s *quizService) IngestTranscriptFile(ctx context.Context, meetingID string, path string) error {
	if meetingID == "" {
		return domain.NewInvalidInputError("meeting_id is required")
	}

	text, err := transcript.ExtractTextFromFile(path)
	if err != nil {
		return domain.NewInternalError("Failed to read transcript file", err)
	}

	return s.generateAndStore(ctx, text, &meetingID)
}

// HandleWebhookEvent implements QuizService
func (s *quizService) HandleWebhookEvent(ctx context.Context, event dto.WebhookEvent) error {
	log := logger.Get()

	if event.Event != dto.TranscriptCompletedEvent {
		log.Info("Ignoring webhook event", zap.String("event", event.Event))
		return nil
	}

	file := event.Payload.Object.TranscriptFile()
	if file == nil {
		log.Warn("Webhook event has no transcript file",
			zap.String("event", event.Event),
			zap.String("meeting_uuid", event.Payload.Object.UUID),
			zap.Int("recording_files", len(event.Payload.Object.RecordingFiles)),
		)
		return nil
	}

	content, err := s.downloader.Download(ctx, file.DownloadURL, event.DownloadToken)
	if err != nil {
		log.Error("Failed to download transcript",
			zap.String("download_url", file.DownloadURL),
			zap.Error(err),
		)
		return err
	}

	text := transcript.ExtractText(strings.NewReader(content))
	// Webhook-ingested sets are stored without a meeting association.
	return s.generateAndStore(ctx, text, nil)
}

// GetQuizByMeetingID implements QuizService
func (s *quizService) GetQuizByMeetingID(ctx context.Context, meetingID string) ([]dto.QuestionResponse, error) {
	if meetingID == "" {
		return nil, domain.NewInvalidInputError("meeting_id is required")
	}

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cache.QuizSetKey(meetingID)); err == nil {
			var responses []dto.QuestionResponse
			if err := json.Unmarshal([]byte(cached), &responses); err == nil {
				return responses, nil
			}
			logger.Get().Warn("Dropping undecodable cache entry", zap.String("meeting_id", meetingID))
		} else if err != domain.ErrCacheMiss {
			logger.Get().Warn("Cache read failed", zap.String("meeting_id", meetingID), zap.Error(err))
		}
	}

	questions, err := s.repo.GetByMeetingID(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	responses := toQuestionResponses(questions)
	if s.cache != nil {
		if encoded, err := json.Marshal(responses); err == nil {
			if err := s.cache.Set(ctx, cache.QuizSetKey(meetingID), string(encoded), s.cfg.Redis.TTL); err != nil {
				logger.Get().Warn("Cache write failed", zap.String("meeting_id", meetingID), zap.Error(err))
			}
		}
	}
	return responses, nil
}

func (s *quizService) generateAndStore(ctx context.Context, text string, meetingID *string) error {
	if strings.TrimSpace(text) == "" {
		return domain.NewInvalidInputError("transcript contained no dialogue text")
	}

	questions, err := s.generator.Generate(ctx, text, s.cfg.Generation.UploadNumQuestions)
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		return domain.NewError(domain.CodeGenerationFailure, "Model produced no parseable questions", nil)
	}

	if err := s.repo.Save(ctx, questions, meetingID); err != nil {
		return err
	}

	if s.cache != nil && meetingID != nil {
		// Stored rows supersede any cached set for the meeting.
		if err := s.cache.Delete(ctx, cache.QuizSetKey(*meetingID)); err != nil {
			logger.Get().Warn("Cache invalidation failed", zap.String("meeting_id", *meetingID), zap.Error(err))
		}
	}

	logger.Get().Info("Stored generated questions",
		zap.Int("count", len(questions)),
		zap.Bool("has_meeting_id", meetingID != nil),
	)
	return nil
}

func toQuestionResponses(questions []domain.Question) []dto.QuestionResponse {
	responses := make([]dto.QuestionResponse, 0, len(questions))
	for _, q := range questions {
		responses = append(responses, dto.QuestionResponse{
			Question:      q.Question,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
		})
	}
	return responses
}
