// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file when
// present), loads them into structured Go types, and validates that required
// values are present so they can be reused across the application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad config.
//   - Provide defaults for every optional block.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists, it gets loaded into the
	// process env before any variable is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Key mapping:
	- Env vars are read using the prefix MEDAL_
	- Keys are lowercased, the prefix removed
	- A double underscore separates nesting levels
	  e.g. MEDAL_SERVER__READ_TIMEOUT -> server.read_timeout -> Config.Server.ReadTimeout
	- OPENAI_API_KEY is accepted as openai.api_key; MEDAL_OPENAI__API_KEY wins
	  when both are set.
*/

const (
	envPrefix         = "MEDAL_"
	openAIEnvPrefix   = "OPENAI_"
	nestingDelimiter  = "__"
	listValueSplitter = ","
)

// Config is the root configuration object for the application.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	OpenAI        OpenAIConfig         `koanf:"openai" validate:"required"`
	Lambda        LambdaConfig         `koanf:"lambda"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
//
// Timeouts are seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required,min=1"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required,min=1"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required,min=1"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required,min=1"`

	// BodyLimit is an echo size string ("1M", "512K").
	BodyLimit string `koanf:"body_limit" validate:"required"`

	// RateLimit is the allowed requests per second per client IP.
	// Zero disables rate limiting.
	RateLimit float64 `koanf:"rate_limit" validate:"min=0"`
}

// OpenAIConfig configures the image-edit API collaborator.
//
// APIKey is deliberately not required here: a missing key is reported per
// request as a 500, the process still starts and serves /status.
type OpenAIConfig struct {
	APIKey  string        `koanf:"api_key"`
	BaseURL string        `koanf:"base_url" validate:"required,url"`
	Model   string        `koanf:"model" validate:"required"`
	Prompt  string        `koanf:"prompt" validate:"required"`
	Size    string        `koanf:"size" validate:"required"`
	Timeout time.Duration `koanf:"timeout" validate:"min=1s"`
}

// LambdaConfig selects the API Gateway payload format the Lambda entrypoint
// expects.
type LambdaConfig struct {
	EventFormat string `koanf:"event_format" validate:"omitempty,oneof=v1 v2"`
}

// Default values of the image edit request.
const (
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOpenAIModel   = "gpt-image-1"
	DefaultOpenAIPrompt  = "Remove the background completely and keep only the medal clean, detailed, and centered."
	DefaultOpenAISize    = "512x512"
)

// DefaultConfig returns the configuration used when nothing is set.
//
// LoadConfig unmarshals the environment on top of it, so only the variables
// that are present override these values.
func DefaultConfig() *Config {
	return &Config{
		Primary: Primary{
			Env: "development",
		},
		Server: ServerConfig{
			Port:               "8080",
			ReadTimeout:        10,
			WriteTimeout:       90,
			IdleTimeout:        120,
			CORSAllowedOrigins: []string{"*"},
			BodyLimit:          "1M",
		},
		OpenAI: OpenAIConfig{
			BaseURL: DefaultOpenAIBaseURL,
			Model:   DefaultOpenAIModel,
			Prompt:  DefaultOpenAIPrompt,
			Size:    DefaultOpenAISize,
			Timeout: 60 * time.Second,
		},
		Lambda: LambdaConfig{
			EventFormat: "v2",
		},
		Observability: DefaultObservabilityConfig(),
	}
}

// mapEnvKey turns MEDAL_SERVER__READ_TIMEOUT into server.read_timeout.
func mapEnvKey(prefix string) func(key, value string) (string, interface{}) {
	return func(key, value string) (string, interface{}) {
		k := strings.ToLower(strings.TrimPrefix(key, prefix))
		k = strings.ReplaceAll(k, nestingDelimiter, ".")

		// Lists are comma separated in the environment.
		if k == "server.cors_allowed_origins" {
			parts := strings.Split(value, listValueSplitter)
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			return k, parts
		}

		return k, value
	}
}

// LoadConfig loads configuration from environment variables, unmarshals it
// over DefaultConfig, validates it and returns the result.
//
// Behavior summary:
//   - Loads OPENAI_ vars into the openai block (api_key only, in practice)
//   - Loads MEDAL_ vars with "__" nesting
//   - Unmarshals into Config
//   - Validates struct tags and observability rules
//   - Forces the observability service name and environment
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.ProviderWithValue(openAIEnvPrefix, ".", func(key, value string) (string, interface{}) {
		if key != "OPENAI_API_KEY" {
			// Only the credential is read with the bare vendor prefix.
			return "", nil
		}
		return "openai.api_key", value
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load OpenAI env variables: %w", err)
	}

	if err := k.Load(env.ProviderWithValue(envPrefix, ".", mapEnvKey(envPrefix)), nil); err != nil {
		return nil, fmt.Errorf("could not load initial env variables: %w", err)
	}

	mainConfig := DefaultConfig()
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	if err := validator.New().Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Force service name and environment values regardless of what user set,
	// so logs and traces always agree.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

// HasOpenAIKey reports whether a credential for the image-edit API is set.
func (c *OpenAIConfig) HasOpenAIKey() bool {
	return strings.TrimSpace(c.APIKey) != ""
}
