// Package usecase implements the conversation core: prompt assembly,
// history validation, and the two-call tool-dispatch turn protocol.
package usecase

import (
	"fmt"
	"strings"

	"doppel-ai/internal/domain"
)

// PromptBuilder renders the system instruction for a persona. Build is a
// pure function: the same persona always yields the same prompt.
type PromptBuilder struct{}

// NewPromptBuilder creates a prompt builder.
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// Build renders the full system prompt with the persona's biography
// embedded verbatim under the context heading.
func (PromptBuilder) Build(p domain.Persona) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are acting as %s. You are an AI assistant on %s's portfolio website.\n\n", p.Name, p.Name)
	b.WriteString("Your Goal: Answer questions about professional background, skills, and experience.\n")
	b.WriteString("Tone: Professional, engaging, and friendly.\n\n")
	b.WriteString("Instructions:\n")
	b.WriteString("1. Use the Context below to answer questions faithfully.\n")
	b.WriteString("2. If the user asks something NOT in the context, strictly use the 'record_unknown_question' tool.\n")
	b.WriteString("3. If the user seems interested in hiring or collaborating, ask for their email and use 'record_user_details'.\n")
	b.WriteString("4. Keep answers concise (under 4 sentences) unless asked for elaboration.\n\n")
	b.WriteString("## Context / Resume:\n")
	b.WriteString(p.Biography)

	return b.String()
}
