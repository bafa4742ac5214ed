package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"doppel-ai/internal/domain"
)

const unknownQuestionSchema = `{
	"type": "object",
	"properties": {
		"question": {
			"type": "string",
			"description": "The question that couldn't be answered"
		}
	},
	"required": ["question"],
	"additionalProperties": false
}`

// UnknownQuestionTool logs questions the persona could not answer so the
// operator can fill the gap later.
type UnknownQuestionTool struct {
	notifier domain.Notifier
	recorder domain.Recorder
	logger   *slog.Logger
}

// NewUnknownQuestionTool creates the record_unknown_question tool.
func NewUnknownQuestionTool(notifier domain.Notifier, recorder domain.Recorder, logger *slog.Logger) *UnknownQuestionTool {
	return &UnknownQuestionTool{notifier: notifier, recorder: recorder, logger: logger}
}

func (t *UnknownQuestionTool) Name() string { return "record_unknown_question" }

func (t *UnknownQuestionTool) Description() string {
	return "Always use this tool to record any question that couldn't be answered as you didn't know the answer"
}

func (t *UnknownQuestionTool) Schema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  json.RawMessage(unknownQuestionSchema),
	}
}

// Execute alerts the operator and persists the question. Always succeeds.
func (t *UnknownQuestionTool) Execute(ctx context.Context, args json.RawMessage) domain.ToolResult {
	var payload struct {
		Question string `json:"question"`
	}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &payload); err != nil {
			t.logger.Warn("unparseable tool arguments", "tool", t.Name(), "error", err)
			payload.Question = ""
		}
	}

	t.notifier.Notify(ctx, fmt.Sprintf("UNKNOWN QUESTION: %s", payload.Question))

	if err := t.recorder.RecordQuestion(ctx, payload.Question); err != nil {
		t.logger.Error("failed to persist question", "tool", t.Name(), "error", err)
	}

	return domain.SuccessResult("Question logged for review.")
}

var _ domain.Tool = (*UnknownQuestionTool)(nil)
