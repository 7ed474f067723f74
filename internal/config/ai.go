package config

import (
	"os"
	"time"
)

// ImageGenConfig holds the Stability text-to-image settings.
type ImageGenConfig struct {
	APIKey     string `json:"-"` // Never serialize
	BaseURL    string `json:"baseUrl"`
	EngineID   string `json:"engineId"`
	MaxRetries int    `json:"maxRetries"`
	Timeout    time.Duration
}

// DefaultImageGenConfig returns the default image generation configuration.
func DefaultImageGenConfig() *ImageGenConfig {
	return &ImageGenConfig{
		APIKey:     os.Getenv("STABILITY_API_KEY"),
		BaseURL:    "https://api.stability.ai/v1/generation",
		EngineID:   getEnvOrDefault("STABILITY_ENGINE_ID", "stable-diffusion-xl-1024-v1-0"),
		MaxRetries: 2,
		Timeout:    30 * time.Second, // bounds the round engine's fan-in
	}
}

// IsEnabled returns true if the Stability API is configured.
func (c *ImageGenConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// Endpoint returns the full text-to-image endpoint for the engine.
func (c *ImageGenConfig) Endpoint() string {
	return c.BaseURL + "/" + c.EngineID + "/text-to-image"
}

// EvaluatorConfig holds the Gemini prompt-evaluation settings.
type EvaluatorConfig struct {
	APIKey         string `json:"-"`
	FallbackAPIKey string `json:"-"`
	BaseURL        string `json:"baseUrl"`
	Model          string `json:"model"`
	TimeoutMS      int    `json:"timeoutMs"`
}

// DefaultEvaluatorConfig returns the default evaluator configuration.
func DefaultEvaluatorConfig() *EvaluatorConfig {
	return &EvaluatorConfig{
		APIKey:         os.Getenv("GEMINI_API_KEY"),
		FallbackAPIKey: os.Getenv("GEMINI_API_KEY_FALLBACK"),
		BaseURL:        "https://generativelanguage.googleapis.com/v1beta/models",
		Model:          getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		TimeoutMS:      10000, // 10 second default timeout
	}
}

// IsEnabled returns true if the Gemini API is configured.
func (c *EvaluatorConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// ModelEndpoint returns the full generateContent endpoint.
func (c *EvaluatorConfig) ModelEndpoint() string {
	return c.BaseURL + "/" + c.Model + ":generateContent"
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
