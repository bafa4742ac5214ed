package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"doppel-ai/internal/domain"
)

// Fallback values when the model omits optional lead fields.
const (
	defaultLeadName  = "Name not provided"
	defaultLeadNotes = "not provided"
)

const userDetailsSchema = `{
	"type": "object",
	"properties": {
		"email": {
			"type": "string",
			"description": "The email address of this user"
		},
		"name": {
			"type": "string",
			"description": "The user's name, if they provided it"
		},
		"notes": {
			"type": "string",
			"description": "Any additional information about the conversation that's worth recording to give context"
		}
	},
	"required": ["email"],
	"additionalProperties": false
}`

// UserDetailsTool captures a visitor's contact details when they express
// interest in getting in touch. It alerts the operator and persists the
// lead for the daily digest.
type UserDetailsTool struct {
	notifier domain.Notifier
	recorder domain.Recorder
	logger   *slog.Logger
}

// NewUserDetailsTool creates the record_user_details tool.
func NewUserDetailsTool(notifier domain.Notifier, recorder domain.Recorder, logger *slog.Logger) *UserDetailsTool {
	return &UserDetailsTool{notifier: notifier, recorder: recorder, logger: logger}
}

func (t *UserDetailsTool) Name() string { return "record_user_details" }

func (t *UserDetailsTool) Description() string {
	return "Use this tool to record that a user is interested in being in touch and provided an email address"
}

func (t *UserDetailsTool) Schema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  json.RawMessage(userDetailsSchema),
	}
}

// Execute records the lead. Unparseable arguments degrade to an empty set
// and collaborator failures are logged, so the result is always success:
// the model should tell the visitor their details were taken.
func (t *UserDetailsTool) Execute(ctx context.Context, args json.RawMessage) domain.ToolResult {
	var payload struct {
		Email string `json:"email"`
		Name  string `json:"name"`
		Notes string `json:"notes"`
	}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &payload); err != nil {
			t.logger.Warn("unparseable tool arguments", "tool", t.Name(), "error", err)
			payload.Email, payload.Name, payload.Notes = "", "", ""
		}
	}

	if payload.Name == "" {
		payload.Name = defaultLeadName
	}
	if payload.Notes == "" {
		payload.Notes = defaultLeadNotes
	}

	t.notifier.Notify(ctx, fmt.Sprintf("LEAD CAPTURED: %s (%s). Notes: %s",
		payload.Name, payload.Email, payload.Notes))

	lead := domain.Lead{
		Email:      payload.Email,
		Name:       payload.Name,
		Notes:      payload.Notes,
		CapturedAt: time.Now().UTC(),
	}
	if err := t.recorder.RecordLead(ctx, lead); err != nil {
		t.logger.Error("failed to persist lead", "tool", t.Name(), "error", err)
	}

	return domain.SuccessResult("User details recorded.")
}

var _ domain.Tool = (*UserDetailsTool)(nil)
