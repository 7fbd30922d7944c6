package config

import (
	"testing"
	"time"

	"github.com/corylsmithjr/medal-api/internal/lib/utils"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := LoadConfig()
	utils.AssertNil(t, err)

	utils.AssertEquals(t, "development", cfg.Primary.Env)
	utils.AssertEquals(t, "8080", cfg.Server.Port)
	utils.AssertEquals(t, DefaultOpenAIModel, cfg.OpenAI.Model)
	utils.AssertEquals(t, DefaultOpenAIPrompt, cfg.OpenAI.Prompt)
	utils.AssertEquals(t, DefaultOpenAISize, cfg.OpenAI.Size)
	utils.AssertEquals(t, DefaultOpenAIBaseURL, cfg.OpenAI.BaseURL)
	utils.AssertEquals(t, 60*time.Second, cfg.OpenAI.Timeout)
	utils.AssertEquals(t, ServiceName, cfg.Observability.ServiceName)
	utils.AssertEquals(t, "development", cfg.Observability.Environment)
	utils.AssertFalse(t, cfg.OpenAI.HasOpenAIKey())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-legacy")
	t.Setenv("MEDAL_PRIMARY__ENV", "production")
	t.Setenv("MEDAL_SERVER__PORT", "9999")
	t.Setenv("MEDAL_SERVER__READ_TIMEOUT", "15")
	t.Setenv("MEDAL_SERVER__CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("MEDAL_SERVER__RATE_LIMIT", "2.5")
	t.Setenv("MEDAL_OPENAI__TIMEOUT", "5s")
	t.Setenv("MEDAL_OPENAI__SIZE", "1024x1024")
	t.Setenv("MEDAL_OBSERVABILITY__LOGGING__LEVEL", "warn")
	t.Setenv("MEDAL_OBSERVABILITY__METRICS__ENABLED", "false")

	cfg, err := LoadConfig()
	utils.AssertNil(t, err)

	utils.AssertEquals(t, "production", cfg.Primary.Env)
	utils.AssertEquals(t, "9999", cfg.Server.Port)
	utils.AssertEquals(t, 15, cfg.Server.ReadTimeout)
	utils.AssertEquals(t, 90, cfg.Server.WriteTimeout)
	utils.AssertSliceEquals(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSAllowedOrigins)
	utils.AssertEquals(t, 2.5, cfg.Server.RateLimit)
	utils.AssertEquals(t, 5*time.Second, cfg.OpenAI.Timeout)
	utils.AssertEquals(t, "1024x1024", cfg.OpenAI.Size)
	utils.AssertEquals(t, DefaultOpenAIModel, cfg.OpenAI.Model)
	utils.AssertEquals(t, "sk-legacy", cfg.OpenAI.APIKey)
	utils.AssertEquals(t, "warn", cfg.Observability.GetLogLevel())
	utils.AssertEquals(t, "production", cfg.Observability.Environment)
	utils.AssertFalse(t, cfg.Observability.Metrics.Enabled)
}

func TestPrefixedKeyOverridesLegacyKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-legacy")
	t.Setenv("MEDAL_OPENAI__API_KEY", "sk-medal")

	cfg, err := LoadConfig()
	utils.AssertNil(t, err)
	utils.AssertEquals(t, "sk-medal", cfg.OpenAI.APIKey)
	utils.AssertTrue(t, cfg.OpenAI.HasOpenAIKey())
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"log level":    {"MEDAL_OBSERVABILITY__LOGGING__LEVEL", "verbose"},
		"log format":   {"MEDAL_OBSERVABILITY__LOGGING__FORMAT", "xml"},
		"base url":     {"MEDAL_OPENAI__BASE_URL", "not a url"},
		"timeout":      {"MEDAL_OPENAI__TIMEOUT", "10ms"},
		"event format": {"MEDAL_LAMBDA__EVENT_FORMAT", "v3"},
	}

	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])

			_, err := LoadConfig()
			utils.AssertNonNil(t, err)
		})
	}
}

func TestGetLogLevelByEnvironment(t *testing.T) {
	obs := DefaultObservabilityConfig()
	utils.AssertEquals(t, "debug", obs.GetLogLevel())

	obs.Environment = "production"
	utils.AssertEquals(t, "info", obs.GetLogLevel())
	utils.AssertTrue(t, obs.IsProduction())
	utils.AssertFalse(t, obs.NewRelicEnabled())
}
