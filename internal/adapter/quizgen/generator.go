// Package quizgen generates multiple-choice questions from free text by
// prompting an external LLM and parsing its reply.
package quizgen

import (
	"context"
	"fmt"
	"strings"

	"meetquiz/internal/domain"
	"meetquiz/internal/logger"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

const promptTemplate = `Generate %d multiple-choice questions from the text below.

TEXT:
%s

FORMAT STRICTLY LIKE THIS:
Question (do not include numbering):
a) Option A
b) Option B
c) Option C
d) Option D (Correct)

Only include each question block once. Separate each question block with exactly one blank line.`

// Generator implements domain.QuestionGenerator on top of a langchaingo
// model.
type Generator struct {
	llm llms.Model
}

// NewGenerator wraps an initialized langchaingo model.
func NewGenerator(llm llms.Model) *Generator {
	return &Generator{llm: llm}
}

// Generate prompts the model for numQuestions question blocks and parses the
// reply. Blocks that fail parsing are logged and dropped; the call only
// fails when the provider rejects the prompt or the call itself fails.
func (g *Generator) Generate(ctx context.Context, sourceText string, numQuestions int) ([]domain.Question, error) {
	prompt := fmt.Sprintf(promptTemplate, numQuestions, sourceText)

	resp, err := g.llm.GenerateContent(ctx,
		[]llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)},
		llms.WithTemperature(0.2),
	)
	if err != nil {
		if reason, blocked := blockReason(err); blocked {
			return nil, domain.NewRejectedInputError(reason)
		}
		return nil, domain.NewGenerationFailureError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, domain.NewGenerationFailureError(fmt.Errorf("model returned no candidates"))
	}

	choice := resp.Choices[0]
	if reason, blocked := blockedStopReason(choice.StopReason); blocked {
		return nil, domain.NewRejectedInputError(reason)
	}

	raw := strings.TrimSpace(choice.Content)
	logger.Get().Debug("Raw model output", zap.String("output", raw))

	questions, diags := ParseQuestionBlocks(raw)
	for _, d := range diags {
		logger.Get().Warn("Discarded question block",
			zap.String("reason", d.Reason),
			zap.String("block", d.Block),
		)
	}
	if len(questions) < numQuestions {
		logger.Get().Warn("Generated fewer questions than requested",
			zap.Int("requested", numQuestions),
			zap.Int("parsed", len(questions)),
		)
	}
	return questions, nil
}

// blockReason inspects a provider error for a content-policy block. The
// googleai backend reports blocked prompts as errors containing the word
// "blocked" together with the block reason.
func blockReason(err error) (string, bool) {
	msg := err.Error()
	if strings.Contains(strings.ToLower(msg), "blocked") {
		return msg, true
	}
	return "", false
}

func blockedStopReason(stop string) (string, bool) {
	switch strings.ToLower(stop) {
	case "safety", "blocklist", "prohibited_content":
		return stop, true
	}
	return "", false
}

var _ domain.QuestionGenerator = (*Generator)(nil)
