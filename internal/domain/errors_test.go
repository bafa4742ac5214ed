package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainErrorFormat(t *testing.T) {
	err := NewDomainError("Registry.Dispatch", ErrToolNotFound, "tool 'foo'")
	want := "Registry.Dispatch: tool 'foo': tool not found"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestDomainErrorFormatNoDetail(t *testing.T) {
	err := NewDomainError("Client.Chat", ErrRateLimit, "")
	want := "Client.Chat: rate limit exceeded"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestDomainErrorUnwrap(t *testing.T) {
	err := NewDomainError("Client.Chat", ErrAuthInvalid, "401 from provider")
	if !errors.Is(err, ErrAuthInvalid) {
		t.Error("errors.Is should match ErrAuthInvalid")
	}
}

func TestDomainErrorAs(t *testing.T) {
	err := NewDomainError("Client.Chat", ErrProviderFailure, "gemini")
	var de *DomainError
	if !errors.As(err, &de) {
		t.Fatal("errors.As should match *DomainError")
	}
	if de.Op != "Client.Chat" {
		t.Errorf("Op = %q, want %q", de.Op, "Client.Chat")
	}
}

// --- ErrorCode tests ---

func TestErrorCodeOf_DirectSentinel(t *testing.T) {
	assert.Equal(t, CodeToolNotFound, ErrorCodeOf(ErrToolNotFound))
	assert.Equal(t, CodeRateLimit, ErrorCodeOf(ErrRateLimit))
	assert.Equal(t, CodeAuthInvalid, ErrorCodeOf(ErrAuthInvalid))
	assert.Equal(t, CodeMalformedHistory, ErrorCodeOf(ErrMalformedHistory))
}

func TestErrorCodeOf_DomainError(t *testing.T) {
	err := NewDomainError("Registry.Dispatch", ErrToolNotFound, "tool 'foo'")
	assert.Equal(t, CodeToolNotFound, ErrorCodeOf(err))
}

func TestErrorCodeOf_WrappedError(t *testing.T) {
	// fmt.Errorf with %w wraps the sentinel.
	wrapped := fmt.Errorf("context: %w", ErrContextOverflow)
	assert.Equal(t, CodeContextOverflow, ErrorCodeOf(wrapped))
}

func TestErrorCodeOf_UnknownError(t *testing.T) {
	assert.Equal(t, CodeUnknown, ErrorCodeOf(fmt.Errorf("some random error")))
}

func TestErrorCodeOf_Nil(t *testing.T) {
	assert.Equal(t, CodeUnknown, ErrorCodeOf(nil))
}

func TestDomainError_Code(t *testing.T) {
	err := NewDomainError("Store.RecordLead", ErrRecordStore, "disk full")
	assert.Equal(t, CodeRecordStore, err.Code())
}

func TestDomainError_CodeUnknownSentinel(t *testing.T) {
	err := NewDomainError("Op", fmt.Errorf("custom"), "detail")
	assert.Equal(t, CodeUnknown, err.Code())
}

func TestAllSentinelsHaveCodes(t *testing.T) {
	// Verify every sentinel in errorCodeMap maps to a non-empty code.
	require.NotEmpty(t, errorCodeMap)
	for sentinel, code := range errorCodeMap {
		assert.NotEmpty(t, code, "sentinel %v has empty code", sentinel)
		assert.NotEqual(t, CodeUnknown, code, "sentinel %v maps to UNKNOWN", sentinel)
	}
}

// --- WrapOp tests ---

func TestWrapOp_Nil(t *testing.T) {
	assert.Nil(t, WrapOp("anything", nil))
}

func TestWrapOp_Format(t *testing.T) {
	err := WrapOp("Persona.Load", ErrConfigLoad)
	assert.Equal(t, "Persona.Load: failed to load configuration", err.Error())
}

func TestWrapOp_PreservesIs(t *testing.T) {
	err := WrapOp("Client.Chat", ErrRateLimit)
	assert.True(t, errors.Is(err, ErrRateLimit))
}

func TestWrapOp_PreservesErrorCode(t *testing.T) {
	err := WrapOp("Client.Chat", ErrRateLimit)
	assert.Equal(t, CodeRateLimit, ErrorCodeOf(err))
}

func TestWrapOp_Chain(t *testing.T) {
	inner := WrapOp("inner", ErrProviderFailure)
	outer := WrapOp("outer", inner)
	assert.Equal(t, "outer: inner: provider request failed", outer.Error())
	assert.True(t, errors.Is(outer, ErrProviderFailure))
}
