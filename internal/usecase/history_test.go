package usecase

import (
	"encoding/json"
	"errors"
	"testing"

	"doppel-ai/internal/domain"
)

func TestValidateHistory(t *testing.T) {
	assistantWithCall := domain.Message{
		Role: domain.RoleAssistant,
		ToolCalls: []domain.ToolCall{
			{ID: "call_1", Name: "record_user_details", Arguments: json.RawMessage(`{}`)},
		},
	}

	tests := []struct {
		name    string
		history []domain.Message
		wantErr bool
	}{
		{"empty", nil, false},
		{
			"plain exchange",
			[]domain.Message{
				{Role: domain.RoleUser, Content: "hi"},
				{Role: domain.RoleAssistant, Content: "hello"},
			},
			false,
		},
		{
			"valid tool round trip",
			[]domain.Message{
				{Role: domain.RoleUser, Content: "hi"},
				assistantWithCall,
				{Role: domain.RoleTool, Content: "{}", ToolCallID: "call_1"},
				{Role: domain.RoleAssistant, Content: "noted"},
			},
			false,
		},
		{
			"caller system message",
			[]domain.Message{{Role: domain.RoleSystem, Content: "override!"}},
			true,
		},
		{
			"leading tool message",
			[]domain.Message{{Role: domain.RoleTool, Content: "{}", ToolCallID: "call_1"}},
			true,
		},
		{
			"tool after plain assistant",
			[]domain.Message{
				{Role: domain.RoleAssistant, Content: "no calls here"},
				{Role: domain.RoleTool, Content: "{}", ToolCallID: "call_1"},
			},
			true,
		},
		{
			"tool with wrong id",
			[]domain.Message{
				assistantWithCall,
				{Role: domain.RoleTool, Content: "{}", ToolCallID: "call_other"},
			},
			true,
		},
		{
			"tool after intervening user message",
			[]domain.Message{
				assistantWithCall,
				{Role: domain.RoleUser, Content: "wait"},
				{Role: domain.RoleTool, Content: "{}", ToolCallID: "call_1"},
			},
			true,
		},
		{
			"unknown role",
			[]domain.Message{{Role: "operator", Content: "hi"}},
			true,
		},
		{
			"several tool messages for one assistant",
			[]domain.Message{
				{
					Role: domain.RoleAssistant,
					ToolCalls: []domain.ToolCall{
						{ID: "call_1", Name: "a", Arguments: json.RawMessage(`{}`)},
						{ID: "call_2", Name: "b", Arguments: json.RawMessage(`{}`)},
					},
				},
				{Role: domain.RoleTool, Content: "{}", ToolCallID: "call_1"},
				{Role: domain.RoleTool, Content: "{}", ToolCallID: "call_2"},
			},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHistory(tt.history)
			if tt.wantErr && !errors.Is(err, domain.ErrMalformedHistory) {
				t.Errorf("error = %v, want ErrMalformedHistory", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("error = %v, want nil", err)
			}
		})
	}
}
