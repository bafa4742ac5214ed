package usecase

import (
	"strconv"

	"doppel-ai/internal/domain"
)

// ValidateHistory checks a caller-supplied conversation history against the
// turn contract: only user/assistant/tool roles (the system message is ours
// to add, never the caller's), and every tool message must correlate to a
// tool call in the immediately preceding assistant message. Returns a
// malformed-history error on the first violation.
func ValidateHistory(history []domain.Message) error {
	var pendingCalls map[string]bool

	for i, msg := range history {
		switch msg.Role {
		case domain.RoleUser, domain.RoleAssistant:
			if msg.Role == domain.RoleAssistant && len(msg.ToolCalls) > 0 {
				pendingCalls = make(map[string]bool, len(msg.ToolCalls))
				for _, tc := range msg.ToolCalls {
					pendingCalls[tc.ID] = true
				}
			} else {
				pendingCalls = nil
			}

		case domain.RoleTool:
			if pendingCalls == nil {
				return domain.NewDomainError("ValidateHistory", domain.ErrMalformedHistory,
					positionDetail(i, "tool message without preceding assistant tool calls"))
			}
			if !pendingCalls[msg.ToolCallID] {
				return domain.NewDomainError("ValidateHistory", domain.ErrMalformedHistory,
					positionDetail(i, "tool message references unknown tool_call_id"))
			}
			// keep pendingCalls: several tool messages may answer one
			// assistant message

		case domain.RoleSystem:
			return domain.NewDomainError("ValidateHistory", domain.ErrMalformedHistory,
				positionDetail(i, "caller-supplied system message"))

		default:
			return domain.NewDomainError("ValidateHistory", domain.ErrMalformedHistory,
				positionDetail(i, "unknown role "+msg.Role))
		}
	}

	return nil
}

func positionDetail(index int, what string) string {
	return "message " + strconv.Itoa(index) + ": " + what
}
