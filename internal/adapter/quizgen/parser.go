package quizgen

import (
	"fmt"
	"regexp"
	"strings"

	"meetquiz/internal/domain"
)

// CorrectMarker is the literal token the generator is instructed to append
// to exactly one option line.
const CorrectMarker = "(Correct)"

const blockLineCount = 5 // 1 question line + 4 option lines

var (
	blockSeparator = regexp.MustCompile(`\n\s*\n`)
	optionPattern  = regexp.MustCompile(`^([a-d])\)\s*(.*?)(?:\s*\(Correct\))?$`)
)

// ParseDiagnostic records why a block was discarded. Diagnostics are a
// side-channel for operators; they never fail the parse.
type ParseDiagnostic struct {
	Block  string
	Reason string
}

// ParseQuestionBlocks splits raw generated text into question blocks and
// extracts structured questions with strict format validation. The parser is
// total: malformed blocks reduce the yield and are reported as diagnostics,
// never as errors.
//
// A block is accepted only when it has exactly five non-empty lines, all
// four option letters a-d are present, and exactly one option carries the
// correctness marker. Blocks with multiple markers are ambiguous and
// rejected outright rather than resolved last-wins.
func ParseQuestionBlocks(raw string) ([]domain.Question, []ParseDiagnostic) {
	var questions []domain.Question
	var diags []ParseDiagnostic

	for _, block := range blockSeparator.Split(raw, -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		lines := nonEmptyLines(block)
		if len(lines) != blockLineCount {
			diags = append(diags, ParseDiagnostic{
				Block:  block,
				Reason: fmt.Sprintf("expected %d lines, got %d", blockLineCount, len(lines)),
			})
			continue
		}

		questionText := strings.TrimSpace(strings.TrimPrefix(lines[0], "Question:"))

		options := make(map[string]string, domain.OptionCount)
		markerCount := 0
		correctAnswer := ""

		for _, line := range lines[1:] {
			match := optionPattern.FindStringSubmatch(line)
			if match == nil {
				continue
			}
			label, text := match[1], strings.TrimSpace(match[2])
			// last occurrence wins if the generator repeats a label
			options[label] = text
			if strings.Contains(line, CorrectMarker) {
				markerCount++
				correctAnswer = text
			}
		}

		switch {
		case len(options) != domain.OptionCount:
			diags = append(diags, ParseDiagnostic{
				Block:  block,
				Reason: fmt.Sprintf("expected options a-d, got %d distinct labels", len(options)),
			})
			continue
		case markerCount == 0:
			diags = append(diags, ParseDiagnostic{Block: block, Reason: "no option marked correct"})
			continue
		case markerCount > 1:
			diags = append(diags, ParseDiagnostic{
				Block:  block,
				Reason: fmt.Sprintf("ambiguous: %d options marked correct", markerCount),
			})
			continue
		}

		ordered := make([]string, 0, domain.OptionCount)
		for _, label := range []string{"a", "b", "c", "d"} {
			ordered = append(ordered, options[label])
		}

		q := domain.Question{
			Question:      questionText,
			Options:       ordered,
			CorrectAnswer: correctAnswer,
		}
		if err := q.Validate(); err != nil {
			diags = append(diags, ParseDiagnostic{Block: block, Reason: err.Error()})
			continue
		}
		questions = append(questions, q)
	}

	return questions, diags
}

func nonEmptyLines(block string) []string {
	var lines []string
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
