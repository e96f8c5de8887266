package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Veraticus/sift/internal/model"
)

// openAICompatibleClient serves every provider speaking the OpenAI chat
// completions protocol (OpenAI, OpenRouter, Groq).
type openAICompatibleClient struct {
	api         *openai.Client
	limiter     *rateLimiter
	name        string
	apiKey      string
	model       string
	timeout     time.Duration
	temperature float32
	maxTokens   int
}

func newOpenAICompatibleClient(cfg Config) *openAICompatibleClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	return &openAICompatibleClient{
		api:         openai.NewClientWithConfig(clientCfg),
		limiter:     newRateLimiter(cfg.RateLimit),
		name:        cfg.Provider,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		timeout:     cfg.Timeout,
		temperature: float32(cfg.Temperature),
		maxTokens:   cfg.MaxTokens,
	}
}

func (c *openAICompatibleClient) Name() string {
	return c.name
}

// Classify sends a chat completion request and decodes the JSON reply.
func (c *openAICompatibleClient) Classify(ctx context.Context, req Request) (model.ClassificationResult, error) {
	if c.apiKey == "" {
		return model.ClassificationResult{}, NewProviderError(c.name, ReasonAuthMissing, errors.New("API key is not configured"))
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.acquire(ctx, c.name); err != nil {
		return model.ClassificationResult{}, err
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(req)},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return model.ClassificationResult{}, c.mapError(err)
	}

	if len(resp.Choices) == 0 {
		return model.ClassificationResult{}, NewProviderError(c.name, ReasonMalformedResponse, errors.New("no completion choices returned"))
	}

	parsed, err := parseReply(resp.Choices[0].Message.Content)
	if err != nil {
		return model.ClassificationResult{}, NewProviderError(c.name, ReasonMalformedResponse, err)
	}

	return newResult(c.name, req, parsed), nil
}

// mapError converts go-openai errors into a ProviderError.
func (c *openAICompatibleClient) mapError(err error) *ProviderError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return statusError(c.name, apiErr.HTTPStatusCode, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return statusError(c.name, reqErr.HTTPStatusCode, string(reqErr.Body))
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return NewProviderError(c.name, ReasonMalformedResponse, err)
	}

	return transportError(c.name, err)
}
