package handler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"meetquiz/internal/dto"
	"meetquiz/internal/logger"
	"meetquiz/internal/service"
	"meetquiz/internal/util"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// webhookTimeout bounds the background transcript pipeline kicked off by a
// webhook acknowledgement.
const webhookTimeout = 5 * time.Minute

// QuizHandler handles question generation and retrieval HTTP requests
type QuizHandler struct {
	service             service.QuizService
	defaultNumQuestions int
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(svc service.QuizService, defaultNumQuestions int) *QuizHandler {
	return &QuizHandler{
		service:             svc,
		defaultNumQuestions: defaultNumQuestions,
	}
}

// GenerateMCQ handles POST /generate_mcq. The generated set is returned
// directly without being persisted.
func (h *QuizHandler) GenerateMCQ(c *fiber.Ctx) error {
	var req dto.GenerateMCQRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "INVALID_REQUEST",
		})
	}

	if req.NumQuestions == 0 {
		req.NumQuestions = h.defaultNumQuestions
	}

	questions, err := h.service.GenerateFromText(c.UserContext(), req.Text, req.NumQuestions)
	if err != nil {
		return err
	}
	return c.JSON(questions)
}

// UploadTranscript handles POST /upload_transcript/. The uploaded file is
// copied to a temporary location which is removed on every exit path.
func (h *QuizHandler) UploadTranscript(c *fiber.Ctx) error {
	meetingID := c.FormValue("meeting_id")
	if meetingID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "meeting_id is required",
		})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "file is required",
		})
	}

	tempPath := filepath.Join(os.TempDir(), fmt.Sprintf("transcript-%s.vtt", util.NewULID()))
	if err := c.SaveFile(fileHeader, tempPath); err != nil {
		logger.Get().Error("Failed to save uploaded transcript",
			zap.String("meeting_id", meetingID),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "failed to store uploaded file",
		})
	}
	defer func() {
		if err := os.Remove(tempPath); err != nil {
			logger.Get().Warn("Failed to remove temporary transcript", zap.String("path", tempPath), zap.Error(err))
		}
	}()

	if err := h.service.IngestTranscriptFile(c.UserContext(), meetingID, tempPath); err != nil {
		return err
	}

	return c.JSON(dto.StatusResponse{
		Status: fmt.Sprintf("Questions generated and stored for meeting %s", meetingID),
	})
}

// Webhook handles POST /webhook. Webhook semantics: the provider is always
// acknowledged with 200; internal failures are logged, never reflected back.
func (h *QuizHandler) Webhook(c *fiber.Ctx) error {
	var event dto.WebhookEvent
	if err := c.BodyParser(&event); err != nil {
		logger.Get().Warn("Undecodable webhook payload", zap.Error(err))
		return c.JSON(dto.StatusResponse{Status: "received"})
	}

	logger.Get().Info("Webhook event received",
		zap.String("event", event.Event),
		zap.String("meeting_uuid", event.Payload.Object.UUID),
	)

	// Process detached from the request so the ack returns immediately.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), webhookTimeout)
		defer cancel()
		if err := h.service.HandleWebhookEvent(ctx, event); err != nil {
			logger.Get().Error("Webhook processing failed",
				zap.String("event", event.Event),
				zap.Error(err),
			)
		}
	}()

	return c.JSON(dto.StatusResponse{Status: "received"})
}

// GetQuiz handles GET /quiz/:meeting_id
func (h *QuizHandler) GetQuiz(c *fiber.Ctx) error {
	meetingID := c.Params("meeting_id")

	questions, err := h.service.GetQuizByMeetingID(c.UserContext(), meetingID)
	if err != nil {
		return err
	}
	return c.JSON(questions)
}
