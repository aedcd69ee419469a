package repository

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"meetquiz/internal/domain"
	"meetquiz/internal/repository/models"
	"meetquiz/internal/util"

	"github.com/jmoiron/sqlx"
)

const schema = `
CREATE TABLE IF NOT EXISTS questions (
	id         TEXT PRIMARY KEY,
	meeting_id TEXT,
	question   TEXT NOT NULL,
	options    TEXT NOT NULL,
	answer     TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_questions_meeting_id ON questions (meeting_id);
`

// QuestionDatabaseAdapter implements domain.QuestionRepository using sqlx.DB
type QuestionDatabaseAdapter struct {
	db *sqlx.DB

	schemaOnce sync.Once
	schemaErr  error
}

// NewQuestionDatabaseAdapter creates a new instance of QuestionDatabaseAdapter
func NewQuestionDatabaseAdapter(db *sqlx.DB) *QuestionDatabaseAdapter {
	return &QuestionDatabaseAdapter{db: db}
}

// ensureSchema lazily creates the table and index on first use. Idempotent.
func (a *QuestionDatabaseAdapter) ensureSchema(ctx context.Context) error {
	a.schemaOnce.Do(func() {
		_, a.schemaErr = a.db.ExecContext(ctx, schema)
	})
	return a.schemaErr
}

// Save implements domain.QuestionRepository
func (a *QuestionDatabaseAdapter) Save(ctx context.Context, questions []domain.Question, meetingID *string) error {
	if err := a.ensureSchema(ctx); err != nil {
		return domain.NewStoreFailureError("Failed to prepare schema", err)
	}

	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.NewStoreFailureError("Failed to begin transaction", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO questions (id, meeting_id, question, options, answer, created_at)
		VALUES (:id, :meeting_id, :question, :options, :answer, :created_at)`

	now := time.Now().UTC()
	for _, q := range questions {
		row := models.Question{
			ID:        util.NewULID(),
			MeetingID: nullableMeetingID(meetingID),
			Question:  q.Question,
			Options:   models.StringSlice(q.Options),
			Answer:    q.CorrectAnswer,
			CreatedAt: now,
		}
		if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
			return domain.NewStoreFailureError("Failed to insert question", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.NewStoreFailureError("Failed to commit questions", err)
	}
	return nil
}

// GetByMeetingID implements domain.QuestionRepository
func (a *QuestionDatabaseAdapter) GetByMeetingID(ctx context.Context, meetingID string) ([]domain.Question, error) {
	if err := a.ensureSchema(ctx); err != nil {
		return nil, domain.NewStoreFailureError("Failed to prepare schema", err)
	}

	query := `SELECT id, meeting_id, question, options, answer, created_at
		FROM questions
		WHERE meeting_id = ?
		ORDER BY rowid`

	var rows []models.Question
	if err := a.db.SelectContext(ctx, &rows, query, meetingID); err != nil {
		return nil, domain.NewStoreFailureError("Failed to query questions", err)
	}
	if len(rows) == 0 {
		return nil, domain.NewQuizNotFoundError(meetingID)
	}

	questions := make([]domain.Question, 0, len(rows))
	for _, row := range rows {
		questions = append(questions, domain.Question{
			Question:      row.Question,
			Options:       []string(row.Options),
			CorrectAnswer: row.Answer,
		})
	}
	return questions, nil
}

func nullableMeetingID(meetingID *string) sql.NullString {
	if meetingID == nil {
		return sql.NullString{}
	}
	return util.StringToNullString(*meetingID)
}

var _ domain.QuestionRepository = (*QuestionDatabaseAdapter)(nil)
