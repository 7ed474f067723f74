package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"promptbattle/internal/cache"
	"promptbattle/internal/config"
	"promptbattle/internal/model"
)

// EvaluatorService scores player prompts via the Gemini API. It never
// hard-fails: very short prompts are scored locally, API problems retry once
// on a fallback key, and exhaustion yields neutral default scores.
type EvaluatorService struct {
	cfg    *config.EvaluatorConfig
	client *http.Client
	cache  cache.EvalCache
	log    zerolog.Logger
}

func NewEvaluatorService(cfg *config.EvaluatorConfig, evalCache cache.EvalCache, log zerolog.Logger) *EvaluatorService {
	return &EvaluatorService{
		cfg: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
		cache: evalCache,
		log:   log,
	}
}

// EvaluatePrompt returns four 0-100 sub-scores plus feedback for a prompt
// written against a challenge.
func (s *EvaluatorService) EvaluatePrompt(ctx context.Context, prompt, challenge, levelID string) *model.Evaluation {
	trimmed := strings.TrimSpace(prompt)
	wordCount := len(strings.Fields(trimmed))

	// Too short to be worth an API call; score locally.
	if wordCount <= 3 {
		s.log.Debug().Int("words", wordCount).Msg("prompt too short, scoring locally")
		return shortPromptEvaluation(wordCount)
	}

	cacheKey := fmt.Sprintf("eval:%s:%s", levelID, truncate(trimmed, 50))
	if cached, ok := s.cache.Get(ctx, cacheKey); ok {
		s.log.Debug().Str("level", levelID).Msg("evaluation cache hit")
		return cached
	}

	if !s.cfg.IsEnabled() {
		return neutralEvaluation()
	}

	evalPrompt := s.buildEvaluationPrompt(trimmed, challenge, wordCount)

	for attempt := 0; attempt < 2; attempt++ {
		apiKey := s.cfg.APIKey
		if attempt > 0 && s.cfg.FallbackAPIKey != "" {
			apiKey = s.cfg.FallbackAPIKey
		}

		response, err := s.callGemini(ctx, apiKey, evalPrompt)
		if err == nil {
			eval, perr := parseEvaluation(response)
			if perr == nil {
				s.cache.Set(ctx, cacheKey, eval)
				return eval
			}
			err = perr
		}

		s.log.Warn().Err(err).Int("attempt", attempt+1).Msg("prompt evaluation attempt failed")
		if attempt == 0 {
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return neutralEvaluation()
			}
		}
	}
	return neutralEvaluation()
}

// buildEvaluationPrompt compresses the instruction for token efficiency.
func (s *EvaluatorService) buildEvaluationPrompt(prompt, challenge string, wordCount int) string {
	penalty := ""
	if wordCount < 10 {
		penalty = " Note: Short prompts with few details should score lower on specificity and creativity."
	}
	return fmt.Sprintf(`Evaluate prompt for: "%s"
Prompt (%d words): "%s"

Score 0-100: clarity, specificity, creativity, structure.%s
Brief feedback + 1 tip.

JSON only: {"clarity":N,"specificity":N,"creativity":N,"structure":N,"feedback":"...","tip":"..."}`,
		truncate(challenge, 100), wordCount, truncate(prompt, 400), penalty)
}

// callGemini makes a request to the Gemini API.
func (s *EvaluatorService) callGemini(ctx context.Context, apiKey, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]string{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"maxOutputTokens": 180,
			"temperature":     0.2,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s?key=%s", s.cfg.ModelEndpoint(), apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini API error %d", resp.StatusCode)
	}

	// Parse Gemini response structure
	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", err
	}
	if len(geminiResp.Candidates) > 0 && len(geminiResp.Candidates[0].Content.Parts) > 0 {
		return geminiResp.Candidates[0].Content.Parts[0].Text, nil
	}
	return "", fmt.Errorf("empty response from Gemini")
}

// parseEvaluation strips markdown fences the model sometimes adds, decodes
// the JSON, and clamps every sub-score into 0-100.
func parseEvaluation(response string) (*model.Evaluation, error) {
	clean := strings.TrimSpace(response)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(strings.TrimSpace(clean), "```")

	var eval model.Evaluation
	if err := json.Unmarshal([]byte(clean), &eval); err != nil {
		return nil, err
	}
	eval.Clarity = clampScore(eval.Clarity)
	eval.Specificity = clampScore(eval.Specificity)
	eval.Creativity = clampScore(eval.Creativity)
	eval.Structure = clampScore(eval.Structure)
	return &eval, nil
}

// shortPromptEvaluation scores a <=3-word prompt without an API call.
func shortPromptEvaluation(wordCount int) *model.Evaluation {
	return &model.Evaluation{
		Clarity:     min(40, wordCount*15),
		Specificity: min(25, wordCount*10),
		Creativity:  min(30, wordCount*12),
		Structure:   min(35, wordCount*15),
		Feedback:    "Your prompt is too short. Good prompts need more detail and context to guide the AI effectively.",
		Tip:         "Try adding: what you want, how you want it, who it's for, and any specific requirements or constraints.",
	}
}

// neutralEvaluation is the guaranteed fallback when the API is unavailable.
func neutralEvaluation() *model.Evaluation {
	return &model.Evaluation{
		Clarity:     70,
		Specificity: 65,
		Creativity:  75,
		Structure:   70,
		Feedback:    "Unable to get AI evaluation. Your prompt looks good! Keep practicing.",
		Tip:         "Try to be more specific with your instructions.",
	}
}

func clampScore(n int) int {
	return max(0, min(100, n))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
