package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/sift/internal/model"
)

const anthropicVersion = "2023-06-01"

// anthropicClient implements Provider for the Anthropic Messages API.
type anthropicClient struct {
	httpClient  *http.Client
	limiter     *rateLimiter
	apiKey      string
	model       string
	baseURL     string
	timeout     time.Duration
	temperature float64
	maxTokens   int
}

func newAnthropicClient(cfg Config) *anthropicClient {
	return &anthropicClient{
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		timeout:     cfg.Timeout,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		limiter:     newRateLimiter(cfg.RateLimit),
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (c *anthropicClient) Name() string {
	return ProviderAnthropic
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// anthropicResponse represents the Anthropic API response structure.
type anthropicResponse struct {
	Type    string `json:"type"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Classify sends a classification request to Anthropic.
func (c *anthropicClient) Classify(ctx context.Context, req Request) (model.ClassificationResult, error) {
	if c.apiKey == "" {
		return model.ClassificationResult{}, NewProviderError(ProviderAnthropic, ReasonAuthMissing, errors.New("API key is not configured"))
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.acquire(ctx, ProviderAnthropic); err != nil {
		return model.ClassificationResult{}, err
	}

	jsonBody, err := json.Marshal(anthropicRequest{
		Model:       c.model,
		System:      systemPrompt,
		Messages:    []anthropicMessage{{Role: "user", Content: buildPrompt(req)}},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return model.ClassificationResult{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(jsonBody))
	if err != nil {
		return model.ClassificationResult{}, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return model.ClassificationResult{}, transportError(ProviderAnthropic, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.ClassificationResult{}, transportError(ProviderAnthropic, err)
	}

	if resp.StatusCode != http.StatusOK {
		return model.ClassificationResult{}, statusError(ProviderAnthropic, resp.StatusCode, string(body))
	}

	var response anthropicResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return model.ClassificationResult{}, NewProviderError(ProviderAnthropic, ReasonMalformedResponse, fmt.Errorf("failed to parse response: %w", err))
	}
	if response.Error != nil {
		return model.ClassificationResult{}, NewProviderError(ProviderAnthropic, ReasonMalformedResponse, errors.New(response.Error.Message))
	}

	var text strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return model.ClassificationResult{}, NewProviderError(ProviderAnthropic, ReasonMalformedResponse, errors.New("no content in response"))
	}

	parsed, err := parseReply(text.String())
	if err != nil {
		return model.ClassificationResult{}, NewProviderError(ProviderAnthropic, ReasonMalformedResponse, err)
	}

	return newResult(ProviderAnthropic, req, parsed), nil
}
