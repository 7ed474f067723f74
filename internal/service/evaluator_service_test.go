package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptbattle/internal/cache"
	"promptbattle/internal/config"
)

func geminiReply(t *testing.T, text string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]string{{"text": text}}}},
		},
	})
	require.NoError(t, err)
	return body
}

func newTestEvaluator(cfg *config.EvaluatorConfig) *EvaluatorService {
	return NewEvaluatorService(cfg, cache.NewMemoryEvalCache(), zerolog.Nop())
}

func TestEvaluatePromptShortPromptScoresLocally(t *testing.T) {
	t.Parallel()
	// No API key and no server: a short prompt must never reach the network.
	svc := newTestEvaluator(&config.EvaluatorConfig{TimeoutMS: 100})

	eval := svc.EvaluatePrompt(context.Background(), "red fox", "draw a fox", "level-1")
	require.NotNil(t, eval)
	assert.Equal(t, 30, eval.Clarity)
	assert.Equal(t, 20, eval.Specificity)
	assert.Equal(t, 24, eval.Creativity)
	assert.Equal(t, 30, eval.Structure)
	assert.Contains(t, eval.Feedback, "too short")
}

func TestEvaluatePromptDisabledFallsBackToNeutral(t *testing.T) {
	t.Parallel()
	svc := newTestEvaluator(&config.EvaluatorConfig{TimeoutMS: 100})

	eval := svc.EvaluatePrompt(context.Background(), "a detailed painting of a fox at dawn", "draw a fox", "level-1")
	require.NotNil(t, eval)
	assert.Equal(t, 70, eval.Clarity)
	assert.Equal(t, 65, eval.Specificity)
}

func TestEvaluatePromptParsesFencedResponse(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		text := "```json\n{\"clarity\":88,\"specificity\":140,\"creativity\":-5,\"structure\":70,\"feedback\":\"Nice.\",\"tip\":\"Add lighting.\"}\n```"
		w.Write(geminiReply(t, text))
	}))
	defer srv.Close()

	svc := newTestEvaluator(&config.EvaluatorConfig{
		APIKey:    "test-key",
		BaseURL:   srv.URL,
		Model:     "gemini-test",
		TimeoutMS: 1000,
	})

	eval := svc.EvaluatePrompt(context.Background(), "a detailed painting of a fox at dawn", "draw a fox", "level-1")
	require.NotNil(t, eval)
	assert.Equal(t, 88, eval.Clarity)
	assert.Equal(t, 100, eval.Specificity, "scores clamp to 100")
	assert.Equal(t, 0, eval.Creativity, "scores clamp to 0")
	assert.Equal(t, "Nice.", eval.Feedback)
	assert.Equal(t, "Add lighting.", eval.Tip)
}

func TestEvaluatePromptCachesResults(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write(geminiReply(t, `{"clarity":80,"specificity":80,"creativity":80,"structure":80,"feedback":"f","tip":"t"}`))
	}))
	defer srv.Close()

	svc := newTestEvaluator(&config.EvaluatorConfig{
		APIKey:    "test-key",
		BaseURL:   srv.URL,
		Model:     "gemini-test",
		TimeoutMS: 1000,
	})

	prompt := "a detailed painting of a fox at dawn"
	first := svc.EvaluatePrompt(context.Background(), prompt, "draw a fox", "level-1")
	second := svc.EvaluatePrompt(context.Background(), prompt, "draw a fox", "level-1")

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load(), "identical prompt must hit the cache")

	// A different level is a different cache key.
	svc.EvaluatePrompt(context.Background(), prompt, "draw a fox", "level-2")
	assert.Equal(t, int32(2), calls.Load())
}

func TestEvaluatePromptRetriesWithFallbackKey(t *testing.T) {
	t.Parallel()
	var keys []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.URL.Query().Get("key"))
		if len(keys) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write(geminiReply(t, `{"clarity":90,"specificity":90,"creativity":90,"structure":90,"feedback":"f","tip":"t"}`))
	}))
	defer srv.Close()

	svc := newTestEvaluator(&config.EvaluatorConfig{
		APIKey:         "primary",
		FallbackAPIKey: "backup",
		BaseURL:        srv.URL,
		Model:          "gemini-test",
		TimeoutMS:      1000,
	})

	eval := svc.EvaluatePrompt(context.Background(), "a detailed painting of a fox at dawn", "draw a fox", "level-1")
	require.NotNil(t, eval)
	assert.Equal(t, 90, eval.Clarity)
	assert.Equal(t, []string{"primary", "backup"}, keys)
}

func TestEvaluatePromptExhaustionYieldsNeutral(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(geminiReply(t, "this is not json at all"))
	}))
	defer srv.Close()

	svc := newTestEvaluator(&config.EvaluatorConfig{
		APIKey:    "test-key",
		BaseURL:   srv.URL,
		Model:     "gemini-test",
		TimeoutMS: 1000,
	})

	eval := svc.EvaluatePrompt(context.Background(), "a detailed painting of a fox at dawn", "draw a fox", "level-1")
	require.NotNil(t, eval)
	assert.Equal(t, 70, eval.Clarity)
	assert.Equal(t, 75, eval.Creativity)
}

func TestClampScore(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, clampScore(-10))
	assert.Equal(t, 55, clampScore(55))
	assert.Equal(t, 100, clampScore(250))
}
