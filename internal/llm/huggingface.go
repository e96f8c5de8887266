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

// huggingFaceClient implements Provider for the Hugging Face Inference API.
type huggingFaceClient struct {
	httpClient  *http.Client
	limiter     *rateLimiter
	apiKey      string
	model       string
	baseURL     string
	timeout     time.Duration
	temperature float64
	maxTokens   int
}

func newHuggingFaceClient(cfg Config) *huggingFaceClient {
	return &huggingFaceClient{
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

func (c *huggingFaceClient) Name() string {
	return ProviderHuggingFace
}

type huggingFaceRequest struct {
	Inputs     string                `json:"inputs"`
	Parameters huggingFaceParameters `json:"parameters"`
}

type huggingFaceParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	ReturnFullText bool    `json:"return_full_text"`
}

type huggingFaceGeneration struct {
	GeneratedText string `json:"generated_text"`
}

type huggingFaceError struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time"`
}

// Classify sends a text-generation request to the model endpoint.
func (c *huggingFaceClient) Classify(ctx context.Context, req Request) (model.ClassificationResult, error) {
	if c.apiKey == "" {
		return model.ClassificationResult{}, NewProviderError(ProviderHuggingFace, ReasonAuthMissing, errors.New("API key is not configured"))
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.acquire(ctx, ProviderHuggingFace); err != nil {
		return model.ClassificationResult{}, err
	}

	jsonBody, err := json.Marshal(huggingFaceRequest{
		Inputs: systemPrompt + "\n\n" + buildPrompt(req),
		Parameters: huggingFaceParameters{
			MaxNewTokens: c.maxTokens,
			Temperature:  c.temperature,
		},
	})
	if err != nil {
		return model.ClassificationResult{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+c.model, bytes.NewReader(jsonBody))
	if err != nil {
		return model.ClassificationResult{}, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return model.ClassificationResult{}, transportError(ProviderHuggingFace, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.ClassificationResult{}, transportError(ProviderHuggingFace, err)
	}

	if resp.StatusCode != http.StatusOK {
		return model.ClassificationResult{}, statusError(ProviderHuggingFace, resp.StatusCode, string(body))
	}

	text, err := decodeHuggingFace(body)
	if err != nil {
		return model.ClassificationResult{}, err
	}

	parsed, err := parseReply(text)
	if err != nil {
		return model.ClassificationResult{}, NewProviderError(ProviderHuggingFace, ReasonMalformedResponse, err)
	}

	return newResult(ProviderHuggingFace, req, parsed), nil
}

// decodeHuggingFace handles both envelope shapes: a generation list or an
// error object.
func decodeHuggingFace(body []byte) (string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "", NewProviderError(ProviderHuggingFace, ReasonMalformedResponse, errors.New("empty response"))
	}

	switch trimmed[0] {
	case '[':
		var generations []huggingFaceGeneration
		if err := json.Unmarshal(trimmed, &generations); err != nil {
			return "", NewProviderError(ProviderHuggingFace, ReasonMalformedResponse, fmt.Errorf("failed to parse response: %w", err))
		}
		if len(generations) == 0 {
			return "", NewProviderError(ProviderHuggingFace, ReasonMalformedResponse, errors.New("no generations returned"))
		}
		return generations[0].GeneratedText, nil
	case '{':
		var apiErr huggingFaceError
		if err := json.Unmarshal(trimmed, &apiErr); err != nil || apiErr.Error == "" {
			return "", NewProviderError(ProviderHuggingFace, ReasonMalformedResponse, errors.New("unexpected response object"))
		}
		if apiErr.EstimatedTime > 0 {
			return "", NewProviderError(ProviderHuggingFace, ReasonNetworkError,
				fmt.Errorf("model loading, estimated %.0fs: %s", apiErr.EstimatedTime, apiErr.Error))
		}
		return "", NewProviderError(ProviderHuggingFace, ReasonNetworkError, errors.New(apiErr.Error))
	default:
		return "", NewProviderError(ProviderHuggingFace, ReasonMalformedResponse, errors.New("unexpected response shape"))
	}
}
