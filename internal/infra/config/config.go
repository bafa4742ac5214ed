package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Persona      PersonaConfig      `yaml:"persona"`
	LLM          LLMConfig          `yaml:"llm"`
	Conversation ConversationConfig `yaml:"conversation"`
	Notifier     NotifierConfig     `yaml:"notifier"`
	Recorder     RecorderConfig     `yaml:"recorder"`
	Digest       DigestConfig       `yaml:"digest"`
	Channels     []ChannelConfig    `yaml:"channels"`
	Logger       LoggerConfig       `yaml:"logger"`
	Tracer       TracerConfig       `yaml:"tracer"`
}

// PersonaConfig identifies the persona and its document sources. All three
// document paths are optional on disk; a missing file contributes nothing
// to the biography.
type PersonaConfig struct {
	Name        string `yaml:"name"`
	ProfilePath string `yaml:"profile_path"`
	SummaryPath string `yaml:"summary_path"`
	WebsitePath string `yaml:"website_path"`
}

// LLMConfig holds settings for the chat completion endpoint.
type LLMConfig struct {
	BaseURL        string               `yaml:"base_url"`
	APIKey         string               `yaml:"api_key"`
	Model          string               `yaml:"model"`
	MaxTokens      int                  `yaml:"max_tokens"`
	Temperature    float64              `yaml:"temperature"`
	ConnTimeout    time.Duration        `yaml:"conn_timeout"`
	RespTimeout    time.Duration        `yaml:"resp_timeout"`
	Pool           PoolConfig           `yaml:"pool"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
}

// CircuitBreakerConfig holds circuit breaker settings for the LLM client.
type CircuitBreakerConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxFailures uint32        `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
	Interval    time.Duration `yaml:"interval"`
}

// PoolConfig holds HTTP connection pool settings for the LLM client.
type PoolConfig struct {
	MaxIdleConns        int           `yaml:"max_idle_conns"`
	MaxIdleConnsPerHost int           `yaml:"max_idle_conns_per_host"`
	MaxConnsPerHost     int           `yaml:"max_conns_per_host"`
	IdleConnTimeout     time.Duration `yaml:"idle_conn_timeout"`
}

// ConversationConfig holds turn-protocol settings.
type ConversationConfig struct {
	// ValidateHistory rejects malformed caller-supplied history at the turn
	// boundary. Embedders that pre-validate can switch it off.
	ValidateHistory bool `yaml:"validate_history"`
}

// NotifierConfig holds operator alert settings.
type NotifierConfig struct {
	Pushover PushoverConfig `yaml:"pushover"`
}

// PushoverConfig holds Pushover credentials. Token or User left empty means
// alerts degrade to local logging.
type PushoverConfig struct {
	Token   string        `yaml:"token"`
	User    string        `yaml:"user"`
	Timeout time.Duration `yaml:"timeout"`
}

// RecorderConfig holds lead/question persistence settings.
type RecorderConfig struct {
	Backend string `yaml:"backend"` // "sqlite" or "none"
	Path    string `yaml:"path"`
}

// DigestConfig holds the recurring summary notification settings.
type DigestConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"` // cron expression or duration string
}

// ChannelConfig holds settings for a single presentation channel.
type ChannelConfig struct {
	Type string             `yaml:"type"` // "http" or "console"
	HTTP *HTTPChannelConfig `yaml:"http,omitempty"`
}

// HTTPChannelConfig holds HTTP channel settings.
type HTTPChannelConfig struct {
	Addr      string          `yaml:"addr"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Web       WebConfig       `yaml:"web"`
}

// RateLimitConfig holds per-IP rate limiting settings for the HTTP channel.
type RateLimitConfig struct {
	RequestsPerMin int      `yaml:"requests_per_min"`
	Burst          int      `yaml:"burst"`
	TrustedProxies []string `yaml:"trusted_proxies,omitempty"`
}

// WebConfig customizes the embedded chat page.
type WebConfig struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Examples    []string `yaml:"examples,omitempty"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// TracerConfig holds tracing settings.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
	Endpoint string `yaml:"endpoint"`
}

// Defaults returns a Config with sensible defaults. The LLM defaults point
// at Google's OpenAI-compatible Gemini endpoint.
func Defaults() *Config {
	return &Config{
		Persona: PersonaConfig{
			ProfilePath: "me/linkedin.pdf",
			SummaryPath: "me/summary.txt",
			WebsitePath: "me/website.txt",
		},
		LLM: LLMConfig{
			BaseURL:     "https://generativelanguage.googleapis.com/v1beta/openai/",
			Model:       "gemini-3-flash-preview",
			ConnTimeout: 30 * time.Second,
			RespTimeout: 120 * time.Second,
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:     false,
				MaxFailures: 5,
				Timeout:     30 * time.Second,
				Interval:    60 * time.Second,
			},
		},
		Conversation: ConversationConfig{
			ValidateHistory: true,
		},
		Notifier: NotifierConfig{
			Pushover: PushoverConfig{
				Timeout: 10 * time.Second,
			},
		},
		Recorder: RecorderConfig{
			Backend: "sqlite",
			Path:    "data/doppel.db",
		},
		Digest: DigestConfig{
			Enabled:  false,
			Schedule: "0 9 * * *",
		},
		Channels: []ChannelConfig{
			{
				Type: "http",
				HTTP: &HTTPChannelConfig{
					Addr: ":8080",
					RateLimit: RateLimitConfig{
						RequestsPerMin: 60,
						Burst:          10,
					},
				},
			},
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
		Tracer: TracerConfig{
			Enabled:  false,
			Exporter: "noop",
		},
	}
}

// Load reads a YAML config file over the defaults, applies env overrides,
// and validates. A missing file is not an error: the defaults plus env
// must then carry the mandatory settings.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			ApplyEnvOverrides(cfg)
			if err := Validate(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	ApplyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnvOverrides maps DOPPEL_* env vars to config fields. Conventional
// provider variables (GOOGLE_API_KEY, PUSHOVER_TOKEN, PUSHOVER_USER) serve
// as fallbacks when the DOPPEL_ form is unset.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DOPPEL_PERSONA_NAME"); v != "" {
		cfg.Persona.Name = v
	}
	if v := os.Getenv("DOPPEL_PERSONA_PROFILE_PATH"); v != "" {
		cfg.Persona.ProfilePath = v
	}
	if v := os.Getenv("DOPPEL_PERSONA_SUMMARY_PATH"); v != "" {
		cfg.Persona.SummaryPath = v
	}
	if v := os.Getenv("DOPPEL_PERSONA_WEBSITE_PATH"); v != "" {
		cfg.Persona.WebsitePath = v
	}

	if v := os.Getenv("DOPPEL_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := envFallback("DOPPEL_LLM_API_KEY", "GOOGLE_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("DOPPEL_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("DOPPEL_LLM_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.LLM.MaxTokens = n
		}
	}

	if v := os.Getenv("DOPPEL_CONVERSATION_VALIDATE_HISTORY"); v != "" {
		cfg.Conversation.ValidateHistory = v != "false"
	}

	if v := envFallback("DOPPEL_PUSHOVER_TOKEN", "PUSHOVER_TOKEN"); v != "" {
		cfg.Notifier.Pushover.Token = v
	}
	if v := envFallback("DOPPEL_PUSHOVER_USER", "PUSHOVER_USER"); v != "" {
		cfg.Notifier.Pushover.User = v
	}

	if v := os.Getenv("DOPPEL_RECORDER_BACKEND"); v != "" {
		cfg.Recorder.Backend = v
	}
	if v := os.Getenv("DOPPEL_RECORDER_PATH"); v != "" {
		cfg.Recorder.Path = v
	}

	if v := os.Getenv("DOPPEL_DIGEST_ENABLED"); v == "true" {
		cfg.Digest.Enabled = true
	}
	if v := os.Getenv("DOPPEL_DIGEST_SCHEDULE"); v != "" {
		cfg.Digest.Schedule = v
	}

	if v := os.Getenv("DOPPEL_LOGGER_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("DOPPEL_LOGGER_FORMAT"); v != "" {
		cfg.Logger.Format = v
	}
	if v := os.Getenv("DOPPEL_TRACER_ENABLED"); v == "true" {
		cfg.Tracer.Enabled = true
	}
	if v := os.Getenv("DOPPEL_TRACER_EXPORTER"); v != "" {
		cfg.Tracer.Exporter = v
	}
}

// envFallback returns the first non-empty value among the named env vars.
func envFallback(names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}
