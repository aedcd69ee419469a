package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// StringSlice stores an ordered list of strings as a JSON array in a TEXT
// column. JSON keeps option text round-trippable regardless of what
// characters it contains; there is no delimiter to collide with.
type StringSlice []string

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	jsonData, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil
}

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	var bytesToParse []byte
	switch v := value.(type) {
	case []byte:
		bytesToParse = v
	case string:
		bytesToParse = []byte(v)
	default:
		return errors.New("StringSlice Scan: unsupported type " + fmt.Sprintf("%T", value))
	}

	if len(bytesToParse) == 0 || string(bytesToParse) == "null" {
		*s = StringSlice{}
		return nil
	}
	return json.Unmarshal(bytesToParse, s)
}

// Question is one persisted multiple-choice question row. MeetingID is NULL
// for ad-hoc sets ingested without a meeting association.
type Question struct {
	ID        string         `db:"id"`
	MeetingID sql.NullString `db:"meeting_id"`
	Question  string         `db:"question"`
	Options   StringSlice    `db:"options"`
	Answer    string         `db:"answer"`
	CreatedAt time.Time      `db:"created_at"`
}

func (Question) TableName() string {
	return "questions"
}
