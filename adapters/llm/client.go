package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"neeledger/internal/errors"
	"neeledger/ports"
)

// Config holds Gemini adapter configuration
type Config struct {
	APIKey          string        // Gemini API key
	Model           string        // e.g. "gemini-1.5-pro"
	BaseURL         string        // Optional override (default: https://generativelanguage.googleapis.com/v1beta)
	Temperature     float64       // 0.0-1.0, lower = more deterministic
	MaxOutputTokens int           // Max tokens in response
	Timeout         time.Duration // Request timeout
	MaxConcurrent   int64         // Bound on in-flight requests (0 = default)
}

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

var (
	_ ports.LLMClient = (*GeminiClient)(nil)
	_ ports.LLMClient = (*MockLLMClient)(nil)
)

// GeminiClient implements ports.LLMClient against the Gemini REST API.
type GeminiClient struct {
	apiKey          string
	baseURL         string
	model           string
	temperature     float64
	maxOutputTokens int
	timeout         time.Duration
}

// NewGeminiClient creates a Gemini text-generation client.
func NewGeminiClient(config Config) (*GeminiClient, error) {
	if config.APIKey == "" {
		return nil, errors.ConfigInvalid("missing Gemini API key")
	}

	baseURL := strings.TrimSpace(config.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := strings.TrimSpace(config.Model)
	if model == "" {
		model = "gemini-1.5-pro"
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	maxTokens := config.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = 2048
	}

	return &GeminiClient{
		apiKey:          config.APIKey,
		baseURL:         strings.TrimRight(baseURL, "/"),
		model:           model,
		temperature:     config.Temperature,
		maxOutputTokens: maxTokens,
		timeout:         timeout,
	}, nil
}

// GenerateText sends a single-turn prompt and returns the raw model text.
func (c *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	type part struct {
		Text string `json:"text"`
	}
	type content struct {
		Parts []part `json:"parts"`
	}
	type generationConfig struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	}
	type reqBody struct {
		Contents         []content        `json:"contents"`
		GenerationConfig generationConfig `json:"generationConfig"`
	}

	body := reqBody{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     c.temperature,
			MaxOutputTokens: c.maxOutputTokens,
		},
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	client := &http.Client{Timeout: c.timeout}
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", errors.ExternalService("gemini request failed", err)
	}
	defer resp.Body.Close()

	respRaw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.ExternalService("read gemini response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.ExternalService(fmt.Sprintf("gemini http %d: %s", resp.StatusCode, string(respRaw)), nil)
	}

	type respPart struct {
		Text string `json:"text"`
	}
	type respContent struct {
		Parts []respPart `json:"parts"`
	}
	type candidate struct {
		Content respContent `json:"content"`
	}
	type respBody struct {
		Candidates []candidate `json:"candidates"`
	}

	var decoded respBody
	if err := json.Unmarshal(respRaw, &decoded); err != nil {
		return "", errors.ExternalService("unmarshal gemini response", err)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", errors.ExternalService("gemini response missing candidates", nil)
	}

	var text strings.Builder
	for _, p := range decoded.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	return text.String(), nil
}

// MockLLMClient is a canned LLM client for testing
type MockLLMClient struct {
	Response string // Set this for testing
	Error    error  // Set this to simulate errors
}

func (m *MockLLMClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	if m.Error != nil {
		return "", m.Error
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.Response != "" {
		return m.Response, nil
	}
	// Default mock response
	return `{
		"analysis": "The claimed carbon removal is broadly consistent with the satellite record.",
		"confidence": 0.9,
		"recommendations": ["Request ground-truth plot data for the next cycle"],
		"riskFactors": ["Single-season observation window"],
		"carbonEstimate": 1200
	}`, nil
}
