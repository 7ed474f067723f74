package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptbattle/internal/config"
)

func stabilityOK(t *testing.T, b64 string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"artifacts": []map[string]string{
			{"base64": b64, "finishReason": "SUCCESS"},
		},
	})
	require.NoError(t, err)
	return body
}

func newTestGenerator(srvURL, apiKey string) *StabilityGenerator {
	return NewStabilityGenerator(&config.ImageGenConfig{
		APIKey:     apiKey,
		BaseURL:    srvURL,
		EngineID:   "engine-test",
		MaxRetries: 2,
		Timeout:    time.Second,
	}, zerolog.Nop())
}

func TestGenerateWithoutKeyUsesPlaceholder(t *testing.T) {
	t.Parallel()
	gen := newTestGenerator("http://unused", "")

	url, err := gen.Generate(context.Background(), "dragon", "a majestic dragon")
	require.NoError(t, err)
	assert.Contains(t, url, "via.placeholder.com")
	assert.Contains(t, url, "text=dragon")
}

func TestGeneratePlaceholderColorIsDeterministic(t *testing.T) {
	t.Parallel()
	gen := newTestGenerator("http://unused", "")

	a, _ := gen.Generate(context.Background(), "dragon", "")
	b, _ := gen.Generate(context.Background(), "dragon", "")
	c, _ := gen.Generate(context.Background(), "ocean", "")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestGenerateReturnsDataURL(t *testing.T) {
	t.Parallel()
	var gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req stabilityRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.TextPrompts)
		gotPrompt = req.TextPrompts[0].Text
		w.Write(stabilityOK(t, "aW1hZ2U="))
	}))
	defer srv.Close()

	gen := newTestGenerator(srv.URL, "test-key")
	url, err := gen.Generate(context.Background(), "dragon", "a majestic dragon over a castle")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,aW1hZ2U=", url)
	assert.Equal(t, "a majestic dragon over a castle", gotPrompt)
}

func TestGenerateUsesWordWhenPromptEmpty(t *testing.T) {
	t.Parallel()
	var gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req stabilityRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotPrompt = req.TextPrompts[0].Text
		w.Write(stabilityOK(t, "aW1hZ2U="))
	}))
	defer srv.Close()

	gen := newTestGenerator(srv.URL, "test-key")
	_, err := gen.Generate(context.Background(), "dragon", "   ")
	require.NoError(t, err)
	assert.Equal(t, "dragon", gotPrompt)
}

func TestGenerateRetriesServerErrors(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write(stabilityOK(t, "aW1hZ2U="))
	}))
	defer srv.Close()

	gen := newTestGenerator(srv.URL, "test-key")
	url, err := gen.Generate(context.Background(), "dragon", "a dragon")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))
	assert.Equal(t, int32(2), calls.Load())
}

func TestGenerateClientErrorDoesNotRetry(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"invalid prompt"}`))
	}))
	defer srv.Close()

	gen := newTestGenerator(srv.URL, "test-key")
	url, err := gen.Generate(context.Background(), "dragon", "a dragon")
	require.NoError(t, err, "generation failures degrade to a placeholder")
	assert.Contains(t, url, "via.placeholder.com")
	assert.Equal(t, int32(1), calls.Load())
}

func TestGenerateContentFilteredFallsBack(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := json.Marshal(map[string]any{
			"artifacts": []map[string]string{
				{"base64": "ZGFyaw==", "finishReason": "CONTENT_FILTERED"},
			},
		})
		w.Write(body)
	}))
	defer srv.Close()

	gen := newTestGenerator(srv.URL, "test-key")
	url, err := gen.Generate(context.Background(), "dragon", "something filtered")
	require.NoError(t, err)
	assert.Contains(t, url, "via.placeholder.com")
}
