package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"promptbattle/internal/config"
)

// ImageGenerator produces a displayable image reference for a round word and
// an optional player prompt. Implementations absorb their own failures and
// return a placeholder instead of erroring where possible; the round engine
// still guards against a hard error with its own placeholder.
type ImageGenerator interface {
	Generate(ctx context.Context, word, prompt string) (string, error)
}

const negativePrompt = "blurry, low quality, noisy, distorted, deformed, extra limbs, extra body parts, duplicate, watermark, text"

var fallbackColors = []string{"FF6B6B", "4ECDC4", "45B7D1", "FFA07A", "98D8C8", "F7DC6F"}

// StabilityGenerator generates images through the Stability text-to-image
// API. Transient failures are retried; exhaustion, content filtering, or a
// missing API key all resolve to a deterministic placeholder.
type StabilityGenerator struct {
	cfg    *config.ImageGenConfig
	client *http.Client
	log    zerolog.Logger
}

func NewStabilityGenerator(cfg *config.ImageGenConfig, log zerolog.Logger) *StabilityGenerator {
	return &StabilityGenerator{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: log,
	}
}

type stabilityRequest struct {
	TextPrompts        []stabilityTextPrompt `json:"text_prompts"`
	CfgScale           float64               `json:"cfg_scale"`
	Height             int                   `json:"height"`
	Width              int                   `json:"width"`
	Samples            int                   `json:"samples"`
	Steps              int                   `json:"steps"`
	ClipGuidancePreset string                `json:"clip_guidance_preset"`
}

type stabilityTextPrompt struct {
	Text   string  `json:"text"`
	Weight float64 `json:"weight"`
}

type stabilityResponse struct {
	Artifacts []struct {
		Base64       string `json:"base64"`
		FinishReason string `json:"finishReason"`
	} `json:"artifacts"`
	Message string `json:"message"`
}

// Generate renders the player's exact prompt when one was given, falling
// back to the round word for silent players. It never returns an error.
func (g *StabilityGenerator) Generate(ctx context.Context, word, prompt string) (string, error) {
	finalPrompt := strings.TrimSpace(prompt)
	if finalPrompt == "" {
		finalPrompt = word
	}

	if !g.cfg.IsEnabled() {
		g.log.Warn().Msg("no Stability API key, using placeholder image")
		return g.fallbackImage(word), nil
	}

	for attempt := 0; ; attempt++ {
		imageURL, retryable, err := g.generateOnce(ctx, finalPrompt)
		if err == nil {
			return imageURL, nil
		}
		if !retryable || attempt >= g.cfg.MaxRetries {
			g.log.Error().Err(err).Str("word", word).Msg("image generation failed, using placeholder")
			return g.fallbackImage(word), nil
		}
		g.log.Warn().Err(err).Int("attempt", attempt+1).Msg("retrying image generation")
		select {
		case <-time.After(time.Second):
		case <-ctx.Done():
			return g.fallbackImage(word), nil
		}
	}
}

// generateOnce performs a single API call. The second return reports whether
// the failure is worth retrying (5xx and transport errors are, 4xx is not).
func (g *StabilityGenerator) generateOnce(ctx context.Context, prompt string) (string, bool, error) {
	reqBody := stabilityRequest{
		TextPrompts: []stabilityTextPrompt{
			{Text: prompt, Weight: 1.0},
			{Text: negativePrompt, Weight: -1},
		},
		// SDXL tends to be most reliable between 6.5 and 8.0
		CfgScale: 7.5,
		Height:   1024,
		Width:    1024,
		Samples:  1,
		// 40 steps is a good balance for SDXL quality vs. speed
		Steps:              40,
		ClipGuidancePreset: "FAST_BLUE",
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", false, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.cfg.Endpoint(), bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", true, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, err
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr stabilityResponse
		_ = json.Unmarshal(body, &apiErr)
		retryable := resp.StatusCode >= 500
		return "", retryable, fmt.Errorf("stability API error %d: %s", resp.StatusCode, apiErr.Message)
	}

	var result stabilityResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", false, err
	}
	if len(result.Artifacts) == 0 {
		return "", false, fmt.Errorf("stability API returned no artifacts")
	}

	art := result.Artifacts[0]
	if art.FinishReason != "" && art.FinishReason != "SUCCESS" {
		g.log.Warn().Str("finishReason", art.FinishReason).Msg("stability finish reason")
		// CONTENT_FILTERED often returns a very dark/blurred image
		if art.FinishReason == "CONTENT_FILTERED" {
			return "", false, fmt.Errorf("content filtered")
		}
	}
	if art.Base64 == "" {
		return "", false, fmt.Errorf("stability API returned empty artifact")
	}
	return "data:image/png;base64," + art.Base64, false, nil
}

// fallbackImage builds a deterministic placeholder colored by the word.
func (g *StabilityGenerator) fallbackImage(word string) string {
	colorIndex := 0
	if word != "" {
		colorIndex = int(word[0]) % len(fallbackColors)
	}
	return fmt.Sprintf("https://via.placeholder.com/512/%s/ffffff?text=%s",
		fallbackColors[colorIndex], url.QueryEscape(word))
}
