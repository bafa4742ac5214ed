package usecase

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/trace"

	"doppel-ai/internal/domain"
	"doppel-ai/internal/infra/tracer"
)

// User-facing apologies. The first is for an endpoint failure before any
// side effects; the second acknowledges that tools already ran.
const (
	apologyFirstCall  = "Sorry, I'm having trouble connecting right now. Please try again in a moment."
	apologySecondCall = "Thanks, I've noted that. I'm having trouble composing a full reply right now, so please try again in a moment."
)

// TurnHandlerDeps collects the turn handler's collaborators and sampling
// settings.
type TurnHandlerDeps struct {
	LLM     domain.LLMProvider
	Tools   domain.ToolDispatcher
	Prompt  *PromptBuilder
	Persona domain.Persona
	Logger  *slog.Logger

	Model           string
	MaxTokens       int
	Temperature     float64
	ValidateHistory bool
}

// TurnHandler runs one visitor turn: system prompt + caller history + the
// new user message, at most two endpoint calls, sequential tool dispatch
// between them. All turn state is local, so concurrent turns are safe.
type TurnHandler struct {
	deps TurnHandlerDeps
}

// NewTurnHandler creates a turn handler.
func NewTurnHandler(deps TurnHandlerDeps) *TurnHandler {
	return &TurnHandler{deps: deps}
}

// Handle processes one visitor message and returns the reply text. The only
// non-nil error is a malformed caller history; endpoint failures become
// apology replies because the visitor can do nothing about them.
func (h *TurnHandler) Handle(ctx context.Context, visitorMessage string, history []domain.Message) (string, error) {
	turnID := ulid.Make().String()
	logger := h.deps.Logger.With("turn_id", turnID)

	ctx, span := tracer.StartSpan(ctx, "conversation.turn",
		trace.WithAttributes(
			tracer.StringAttr("turn.id", turnID),
			tracer.IntAttr("turn.history_len", len(history)),
		),
	)
	defer span.End()

	if h.deps.ValidateHistory {
		if err := ValidateHistory(history); err != nil {
			logger.Warn("rejected malformed history", "error", err)
			tracer.RecordError(span, err)
			return "", err
		}
	}

	// private copy: the caller's slice is never touched
	messages := make([]domain.Message, 0, len(history)+4)
	messages = append(messages, domain.Message{
		Role:    domain.RoleSystem,
		Content: h.deps.Prompt.Build(h.deps.Persona),
	})
	messages = append(messages, history...)
	messages = append(messages, domain.Message{
		Role:    domain.RoleUser,
		Content: visitorMessage,
	})

	first, err := h.deps.LLM.Chat(ctx, domain.ChatRequest{
		Model:       h.deps.Model,
		Messages:    messages,
		Tools:       h.deps.Tools.Schemas(),
		MaxTokens:   h.deps.MaxTokens,
		Temperature: h.deps.Temperature,
	})
	if err != nil {
		logger.Error("first endpoint call failed",
			"error", err, "code", string(domain.ErrorCodeOf(err)))
		tracer.RecordError(span, err)
		return apologyFirstCall, nil
	}

	calls := first.Message.ToolCalls
	if first.FinishReason != domain.FinishToolCalls || len(calls) == 0 {
		tracer.SetOK(span)
		logger.Info("turn completed", "endpoint_calls", 1, "tool_calls", 0)
		return first.Message.Content, nil
	}

	messages = append(messages, first.Message)
	for _, call := range calls {
		result := h.deps.Tools.Dispatch(ctx, call)
		encoded, err := json.Marshal(result)
		if err != nil {
			// ToolResult is two strings; this cannot happen in practice
			encoded = []byte(`{"status":"error","message":"internal encoding failure"}`)
		}
		messages = append(messages, domain.Message{
			Role:       domain.RoleTool,
			Content:    string(encoded),
			ToolCallID: call.ID,
		})
	}
	span.SetAttributes(tracer.IntAttr("turn.tool_calls", len(calls)))

	// no tools on the second call: one dispatch round per turn
	second, err := h.deps.LLM.Chat(ctx, domain.ChatRequest{
		Model:       h.deps.Model,
		Messages:    messages,
		MaxTokens:   h.deps.MaxTokens,
		Temperature: h.deps.Temperature,
	})
	if err != nil {
		logger.Error("second endpoint call failed",
			"error", err, "code", string(domain.ErrorCodeOf(err)))
		tracer.RecordError(span, err)
		return apologySecondCall, nil
	}

	tracer.SetOK(span)
	logger.Info("turn completed", "endpoint_calls", 2, "tool_calls", len(calls))
	return second.Message.Content, nil
}

// HandleInbound adapts Handle to the channel-facing domain.TurnHandler
// signature.
func (h *TurnHandler) HandleInbound(ctx context.Context, msg domain.InboundMessage) (domain.OutboundMessage, error) {
	reply, err := h.Handle(ctx, msg.Content, msg.History)
	if err != nil {
		return domain.OutboundMessage{}, err
	}
	return domain.OutboundMessage{TurnID: msg.TurnID, Content: reply}, nil
}
