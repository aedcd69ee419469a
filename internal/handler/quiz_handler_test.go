package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"meetquiz/internal/domain"
	"meetquiz/internal/dto"
	"meetquiz/internal/handler"
	"meetquiz/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Manual Mocks ---

// MockQuizService
type MockQuizService struct {
	GenerateFromTextFunc     func(ctx context.Context, text string, numQuestions int) ([]dto.QuestionResponse, error)
	IngestTranscriptFileFunc func(ctx context.Context, meetingID string, path string) error
	HandleWebhookEventFunc   func(ctx context.Context, event dto.WebhookEvent) error
	GetQuizByMeetingIDFunc   func(ctx context.Context, meetingID string) ([]dto.QuestionResponse, error)
}

func (m *MockQuizService) GenerateFromText(ctx context.Context, text string, numQuestions int) ([]dto.QuestionResponse, error) {
	if m.GenerateFromTextFunc != nil {
		return m.GenerateFromTextFunc(ctx, text, numQuestions)
	}
	panic("MockQuizService.GenerateFromTextFunc not implemented")
}
func (m *MockQuizService) IngestTranscriptFile(ctx context.Context, meetingID string, path string) error {
	if m.IngestTranscriptFileFunc != nil {
		return m.IngestTranscriptFileFunc(ctx, meetingID, path)
	}
	panic("MockQuizService.IngestTranscriptFileFunc not implemented")
}
func (m *MockQuizService) HandleWebhookEvent(ctx context.Context, event dto.WebhookEvent) error {
	if m.HandleWebhookEventFunc != nil {
		return m.HandleWebhookEventFunc(ctx, event)
	}
	panic("MockQuizService.HandleWebhookEventFunc not implemented")
}
func (m *MockQuizService) GetQuizByMeetingID(ctx context.Context, meetingID string) ([]dto.QuestionResponse, error) {
	if m.GetQuizByMeetingIDFunc != nil {
		return m.GetQuizByMeetingIDFunc(ctx, meetingID)
	}
	panic("MockQuizService.GetQuizByMeetingIDFunc not implemented")
}

func newTestApp(svc *MockQuizService) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(),
	})
	h := handler.NewQuizHandler(svc, 3)
	app.Post("/generate_mcq", h.GenerateMCQ)
	app.Post("/upload_transcript/", h.UploadTranscript)
	app.Post("/webhook", h.Webhook)
	app.Get("/quiz/:meeting_id", h.GetQuiz)
	return app
}

func sampleResponses() []dto.QuestionResponse {
	return []dto.QuestionResponse{
		{Question: "Q1?", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "a"},
	}
}

func TestGenerateMCQ(t *testing.T) {
	t.Run("returns question set", func(t *testing.T) {
		svc := &MockQuizService{GenerateFromTextFunc: func(ctx context.Context, text string, n int) ([]dto.QuestionResponse, error) {
			assert.Equal(t, "some text", text)
			assert.Equal(t, 5, n)
			return sampleResponses(), nil
		}}
		app := newTestApp(svc)

		body, _ := json.Marshal(dto.GenerateMCQRequest{Text: "some text", NumQuestions: 5})
		req := httptest.NewRequest("POST", "/generate_mcq", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var got []dto.QuestionResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		require.Len(t, got, 1)
		assert.Equal(t, "Q1?", got[0].Question)
	})

	t.Run("defaults num_questions", func(t *testing.T) {
		svc := &MockQuizService{GenerateFromTextFunc: func(ctx context.Context, text string, n int) ([]dto.QuestionResponse, error) {
			assert.Equal(t, 3, n)
			return sampleResponses(), nil
		}}
		app := newTestApp(svc)

		body, _ := json.Marshal(dto.GenerateMCQRequest{Text: "some text"})
		req := httptest.NewRequest("POST", "/generate_mcq", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("rejected prompt maps to 400", func(t *testing.T) {
		svc := &MockQuizService{GenerateFromTextFunc: func(ctx context.Context, text string, n int) ([]dto.QuestionResponse, error) {
			return nil, domain.NewRejectedInputError("SAFETY")
		}}
		app := newTestApp(svc)

		body, _ := json.Marshal(dto.GenerateMCQRequest{Text: "dangerous text"})
		req := httptest.NewRequest("POST", "/generate_mcq", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		var errResp middleware.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
		assert.Equal(t, string(domain.CodeRejectedInput), errResp.Code)
	})

	t.Run("generation failure maps to 500", func(t *testing.T) {
		svc := &MockQuizService{GenerateFromTextFunc: func(ctx context.Context, text string, n int) ([]dto.QuestionResponse, error) {
			return nil, domain.NewGenerationFailureError(assert.AnError)
		}}
		app := newTestApp(svc)

		body, _ := json.Marshal(dto.GenerateMCQRequest{Text: "text"})
		req := httptest.NewRequest("POST", "/generate_mcq", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	})

	t.Run("malformed body maps to 400", func(t *testing.T) {
		app := newTestApp(&MockQuizService{})
		req := httptest.NewRequest("POST", "/generate_mcq", bytes.NewReader([]byte("{not json")))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func multipartBody(t *testing.T, meetingID string, filename string, content string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	if meetingID != "" {
		require.NoError(t, w.WriteField("meeting_id", meetingID))
	}
	if filename != "" {
		fw, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = io.WriteString(fw, content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func TestUploadTranscript(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		ingestCalled := false
		svc := &MockQuizService{IngestTranscriptFileFunc: func(ctx context.Context, meetingID string, path string) error {
			ingestCalled = true
			assert.Equal(t, "meeting-1", meetingID)
			assert.NotEmpty(t, path)
			return nil
		}}
		app := newTestApp(svc)

		body, contentType := multipartBody(t, "meeting-1", "meeting.vtt", "WEBVTT\n\n1\n00:00:01.000 --> 00:00:02.000\nhello\n")
		req := httptest.NewRequest("POST", "/upload_transcript/", body)
		req.Header.Set("Content-Type", contentType)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.True(t, ingestCalled)

		var status dto.StatusResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
		assert.Contains(t, status.Status, "meeting-1")
	})

	t.Run("missing meeting_id", func(t *testing.T) {
		app := newTestApp(&MockQuizService{})

		body, contentType := multipartBody(t, "", "meeting.vtt", "content")
		req := httptest.NewRequest("POST", "/upload_transcript/", body)
		req.Header.Set("Content-Type", contentType)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing file", func(t *testing.T) {
		app := newTestApp(&MockQuizService{})

		body, contentType := multipartBody(t, "meeting-1", "", "")
		req := httptest.NewRequest("POST", "/upload_transcript/", body)
		req.Header.Set("Content-Type", contentType)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("ingestion failure maps to 500", func(t *testing.T) {
		svc := &MockQuizService{IngestTranscriptFileFunc: func(ctx context.Context, meetingID string, path string) error {
			return domain.NewStoreFailureError("insert failed", assert.AnError)
		}}
		app := newTestApp(svc)

		body, contentType := multipartBody(t, "meeting-1", "meeting.vtt", "content")
		req := httptest.NewRequest("POST", "/upload_transcript/", body)
		req.Header.Set("Content-Type", contentType)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	})
}

func TestWebhook(t *testing.T) {
	t.Run("acknowledges and processes transcript completed", func(t *testing.T) {
		received := make(chan dto.WebhookEvent, 1)
		svc := &MockQuizService{HandleWebhookEventFunc: func(ctx context.Context, event dto.WebhookEvent) error {
			received <- event
			return nil
		}}
		app := newTestApp(svc)

		payload := dto.WebhookEvent{
			Event:         dto.TranscriptCompletedEvent,
			DownloadToken: "tok",
			Payload: dto.WebhookPayload{Object: dto.WebhookRecording{
				UUID: "uuid-1",
				RecordingFiles: []dto.RecordingFile{
					{FileType: dto.TranscriptFileType, DownloadURL: "https://example.com/t"},
				},
			}},
		}
		body, _ := json.Marshal(payload)
		req := httptest.NewRequest("POST", "/webhook", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var status dto.StatusResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
		assert.Equal(t, "received", status.Status)

		select {
		case event := <-received:
			assert.Equal(t, dto.TranscriptCompletedEvent, event.Event)
			assert.Equal(t, "tok", event.DownloadToken)
		case <-time.After(2 * time.Second):
			t.Fatal("webhook event was not processed")
		}
	})

	t.Run("returns 200 even when processing fails", func(t *testing.T) {
		done := make(chan struct{}, 1)
		svc := &MockQuizService{HandleWebhookEventFunc: func(ctx context.Context, event dto.WebhookEvent) error {
			done <- struct{}{}
			return domain.NewGenerationFailureError(assert.AnError)
		}}
		app := newTestApp(svc)

		body, _ := json.Marshal(dto.WebhookEvent{Event: dto.TranscriptCompletedEvent})
		req := httptest.NewRequest("POST", "/webhook", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		<-done
	})

	t.Run("returns 200 for undecodable payload", func(t *testing.T) {
		app := newTestApp(&MockQuizService{})

		req := httptest.NewRequest("POST", "/webhook", bytes.NewReader([]byte("not json at all")))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}

func TestGetQuiz(t *testing.T) {
	t.Run("returns stored set", func(t *testing.T) {
		svc := &MockQuizService{GetQuizByMeetingIDFunc: func(ctx context.Context, meetingID string) ([]dto.QuestionResponse, error) {
			assert.Equal(t, "meeting-1", meetingID)
			return sampleResponses(), nil
		}}
		app := newTestApp(svc)

		resp, err := app.Test(httptest.NewRequest("GET", "/quiz/meeting-1", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var got []dto.QuestionResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Len(t, got, 1)
	})

	t.Run("maps missing quiz to 404", func(t *testing.T) {
		svc := &MockQuizService{GetQuizByMeetingIDFunc: func(ctx context.Context, meetingID string) ([]dto.QuestionResponse, error) {
			return nil, domain.NewQuizNotFoundError(meetingID)
		}}
		app := newTestApp(svc)

		resp, err := app.Test(httptest.NewRequest("GET", "/quiz/absent", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

		var errResp middleware.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
		assert.Equal(t, string(domain.CodeNotFound), errResp.Code)
	})

	t.Run("maps store failure to 500", func(t *testing.T) {
		svc := &MockQuizService{GetQuizByMeetingIDFunc: func(ctx context.Context, meetingID string) ([]dto.QuestionResponse, error) {
			return nil, domain.NewStoreFailureError("query failed", assert.AnError)
		}}
		app := newTestApp(svc)

		resp, err := app.Test(httptest.NewRequest("GET", "/quiz/meeting-1", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	})
}
