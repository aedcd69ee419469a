package domain

import "fmt"

// OptionCount is the number of options every multiple-choice question carries.
const OptionCount = 4

// Question is one multiple-choice question produced by the generator.
// Options are ordered a through d; CorrectAnswer is the text of exactly one
// of them. Questions are immutable once created.
type Question struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// Validate checks the structural invariants of a Question.
func (q *Question) Validate() error {
	if q.Question == "" {
		return fmt.Errorf("question text is required")
	}
	if len(q.Options) != OptionCount {
		return fmt.Errorf("expected %d options, got %d", OptionCount, len(q.Options))
	}
	for i, opt := range q.Options {
		if opt == "" {
			return fmt.Errorf("option %d is empty", i)
		}
	}
	for _, opt := range q.Options {
		if opt == q.CorrectAnswer {
			return nil
		}
	}
	return fmt.Errorf("correct answer %q is not one of the options", q.CorrectAnswer)
}
