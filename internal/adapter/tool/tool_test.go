package tool

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"doppel-ai/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.Default()
}

// mockNotifier captures alerts for assertions.
type mockNotifier struct {
	mu    sync.Mutex
	texts []string
}

func (m *mockNotifier) Notify(_ context.Context, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = append(m.texts, text)
}

func (m *mockNotifier) sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}

// mockRecorder captures writes and optionally fails them.
type mockRecorder struct {
	mu        sync.Mutex
	leads     []domain.Lead
	questions []string
	failWith  error
}

func (m *mockRecorder) RecordLead(_ context.Context, lead domain.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.leads = append(m.leads, lead)
	return nil
}

func (m *mockRecorder) RecordQuestion(_ context.Context, question string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.questions = append(m.questions, question)
	return nil
}

func (m *mockRecorder) Summary(_ context.Context, _ time.Time) (domain.RecordSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.RecordSummary{Leads: len(m.leads), Questions: len(m.questions)}, nil
}

var errStoreDown = fmt.Errorf("store down")
