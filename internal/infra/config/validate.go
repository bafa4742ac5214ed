package config

import (
	"fmt"
	"strings"
)

// ValidationError accumulates config validation errors.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return "config validation failed:\n  - " + strings.Join(v.Errors, "\n  - ")
}

// HasErrors reports whether any validation errors have been recorded.
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// Add records a formatted validation error.
func (v *ValidationError) Add(format string, args ...interface{}) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// Validate checks cfg for structural correctness. It returns a *ValidationError
// when one or more problems are found, allowing callers to inspect all issues.
// A missing LLM API key or persona name is a validation failure: the process
// must refuse to start without them.
func Validate(cfg *Config) error {
	ve := &ValidationError{}
	validatePersona(cfg, ve)
	validateLLM(cfg, ve)
	validateRecorder(cfg, ve)
	validateDigest(cfg, ve)
	validateChannels(cfg, ve)
	if ve.HasErrors() {
		return ve
	}
	return nil
}

func validatePersona(cfg *Config, ve *ValidationError) {
	if strings.TrimSpace(cfg.Persona.Name) == "" {
		ve.Add("persona.name must not be empty (set via DOPPEL_PERSONA_NAME)")
	}
}

func validateLLM(cfg *Config, ve *ValidationError) {
	if cfg.LLM.BaseURL == "" {
		ve.Add("llm.base_url must not be empty")
	}
	if cfg.LLM.APIKey == "" {
		ve.Add("llm.api_key is empty (set via DOPPEL_LLM_API_KEY or GOOGLE_API_KEY)")
	}
	if cfg.LLM.Model == "" {
		ve.Add("llm.model must not be empty")
	}
	if cfg.LLM.MaxTokens < 0 {
		ve.Add("llm.max_tokens must be >= 0")
	}
	if cfg.LLM.Temperature < 0 || cfg.LLM.Temperature > 2 {
		ve.Add("llm.temperature must be between 0 and 2")
	}
}

var validRecorderBackends = map[string]bool{
	"sqlite": true,
	"none":   true,
}

func validateRecorder(cfg *Config, ve *ValidationError) {
	if !validRecorderBackends[cfg.Recorder.Backend] {
		ve.Add("recorder.backend %q is invalid (want: sqlite, none)", cfg.Recorder.Backend)
	}
	if cfg.Recorder.Backend == "sqlite" && cfg.Recorder.Path == "" {
		ve.Add("recorder.path is required when backend is sqlite")
	}
}

func validateDigest(cfg *Config, ve *ValidationError) {
	if cfg.Digest.Enabled && cfg.Digest.Schedule == "" {
		ve.Add("digest.schedule must not be empty when digest is enabled")
	}
}

var validChannelTypes = map[string]bool{
	"http":    true,
	"console": true,
}

func validateChannels(cfg *Config, ve *ValidationError) {
	if len(cfg.Channels) == 0 {
		ve.Add("at least one channel must be configured")
	}
	for i, ch := range cfg.Channels {
		if !validChannelTypes[ch.Type] {
			ve.Add("channels[%d].type %q is invalid (want: http, console)", i, ch.Type)
			continue
		}
		if ch.Type == "http" {
			if ch.HTTP == nil {
				ve.Add("channels[%d]: http config is required for type http", i)
				continue
			}
			if ch.HTTP.Addr == "" {
				ve.Add("channels[%d].http.addr must not be empty", i)
			}
			if ch.HTTP.RateLimit.RequestsPerMin < 0 || ch.HTTP.RateLimit.Burst < 0 {
				ve.Add("channels[%d].http.rate_limit values must be >= 0", i)
			}
		}
	}
}
