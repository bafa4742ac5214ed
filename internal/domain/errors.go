package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the domain layer. Adapters wrap these with operation
// context via DomainError or WrapOp so callers can branch with errors.Is
// while logs keep the full chain.
var (
	// Provider errors, mapped from chat completion endpoint responses.
	ErrProviderFailure = fmt.Errorf("provider request failed")
	ErrRateLimit       = fmt.Errorf("rate limit exceeded")
	ErrAuthInvalid     = fmt.Errorf("authentication failed")
	ErrContextOverflow = fmt.Errorf("context window exceeded")
	ErrEmptyCompletion = fmt.Errorf("completion contained no choices")
	ErrCircuitOpen     = fmt.Errorf("circuit breaker is open")

	// Tool registry errors.
	ErrToolNotFound  = fmt.Errorf("tool not found")
	ErrToolDuplicate = fmt.Errorf("tool already registered")

	// Configuration and input errors.
	ErrConfigLoad       = fmt.Errorf("failed to load configuration")
	ErrMalformedHistory = fmt.Errorf("malformed conversation history")

	// Side-effect store errors.
	ErrRecordStore = fmt.Errorf("record store failed")
)

// DomainError wraps a sentinel with the operation that failed and optional
// detail, producing errors like
// "Registry.Register: record_user_details: tool already registered".
type DomainError struct {
	Op     string // operation, e.g. "Client.Chat"
	Err    error  // underlying sentinel
	Detail string // optional human-readable context
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a DomainError wrapping a sentinel.
func NewDomainError(op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail}
}

// WrapOp prefixes err with an operation name, preserving the chain for
// errors.Is. Returns nil when err is nil so call sites can wrap
// unconditionally.
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ErrorCode is a stable machine-readable identifier for an error class,
// surfaced in structured logs and HTTP error responses.
type ErrorCode string

const (
	CodeUnknown          ErrorCode = "UNKNOWN"
	CodeProviderFailure  ErrorCode = "PROVIDER_FAILURE"
	CodeRateLimit        ErrorCode = "RATE_LIMIT"
	CodeAuthInvalid      ErrorCode = "AUTH_INVALID"
	CodeContextOverflow  ErrorCode = "CONTEXT_OVERFLOW"
	CodeEmptyCompletion  ErrorCode = "EMPTY_COMPLETION"
	CodeCircuitOpen      ErrorCode = "CIRCUIT_OPEN"
	CodeToolNotFound     ErrorCode = "TOOL_NOT_FOUND"
	CodeToolDuplicate    ErrorCode = "TOOL_DUPLICATE"
	CodeConfigLoad       ErrorCode = "CONFIG_LOAD"
	CodeMalformedHistory ErrorCode = "MALFORMED_HISTORY"
	CodeRecordStore      ErrorCode = "RECORD_STORE"
)

var errorCodeMap = map[error]ErrorCode{
	ErrProviderFailure:  CodeProviderFailure,
	ErrRateLimit:        CodeRateLimit,
	ErrAuthInvalid:      CodeAuthInvalid,
	ErrContextOverflow:  CodeContextOverflow,
	ErrEmptyCompletion:  CodeEmptyCompletion,
	ErrCircuitOpen:      CodeCircuitOpen,
	ErrToolNotFound:     CodeToolNotFound,
	ErrToolDuplicate:    CodeToolDuplicate,
	ErrConfigLoad:       CodeConfigLoad,
	ErrMalformedHistory: CodeMalformedHistory,
	ErrRecordStore:      CodeRecordStore,
}

// ErrorCodeOf resolves the ErrorCode for any error by walking its chain.
// Unrecognized errors map to CodeUnknown.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}
	if code, ok := errorCodeMap[err]; ok {
		return code
	}
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code()
	}
	for sentinel, code := range errorCodeMap {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return CodeUnknown
}

// Code returns the ErrorCode of the wrapped sentinel.
func (e *DomainError) Code() ErrorCode {
	if code, ok := errorCodeMap[e.Err]; ok {
		return code
	}
	for sentinel, code := range errorCodeMap {
		if errors.Is(e.Err, sentinel) {
			return code
		}
	}
	return CodeUnknown
}
