package reasoning

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/nutrikatori/backend/internal/domain"
)

const (
	defaultBaseURL   = "https://generativelanguage.googleapis.com"
	defaultModel     = "gemini-2.0-flash"
	defaultTimeout   = 30 * time.Second
	defaultRetryWait = 500 * time.Millisecond

	generatePath = "/v1/models/{model}:generateContent"
	apiKeyHeader = "x-goog-api-key"
)

// Config holds configuration for the reasoning client
type Config struct {
	APIKey            string
	BaseURL           string
	Model             string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	RetryCount        int
	RetryWait         time.Duration
	Logger            *zap.Logger
}

// Client talks to a Gemini-style generateContent endpoint. It supplies
// ingredient aliases and structured dish descriptions.
type Client struct {
	http        *resty.Client
	model       string
	rateLimiter *rate.Limiter
	logger      *zap.Logger
}

// NewClient creates a new reasoning client
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	retryWait := cfg.RetryWait
	if retryWait <= 0 {
		retryWait = defaultRetryWait
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "Nutrikatori/1.0").
		SetHeader(apiKeyHeader, cfg.APIKey).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(retryWait).
		SetRetryMaxWaitTime(4 * retryWait).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			code := resp.StatusCode()
			return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
		})

	return &Client{
		http:        httpClient,
		model:       model,
		rateLimiter: rate.NewLimiter(limit, burst),
		logger:      logger,
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// generate sends a single-turn prompt and returns the first candidate's text
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: rate limiter: %v", domain.ErrReasoningFailure, err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("model", c.model).
		SetBody(generateRequest{Contents: []content{{Parts: []part{{Text: prompt}}}}}).
		Post(generatePath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrReasoningFailure, err)
	}

	if resp.StatusCode() != http.StatusOK {
		c.logger.Warn("reasoning service error",
			zap.Int("status", resp.StatusCode()),
			zap.String("body", truncate(resp.String(), 256)),
		)
		return "", fmt.Errorf("%w: status %d", domain.ErrReasoningFailure, resp.StatusCode())
	}

	var body generateResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	if len(body.Candidates) == 0 || len(body.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no candidates in response", domain.ErrMalformedPayload)
	}

	return strings.TrimSpace(body.Candidates[0].Content.Parts[0].Text), nil
}

// GetAliases returns alternate names for an ingredient. Only string entries
// of the returned array are kept.
func (c *Client) GetAliases(ctx context.Context, name string) ([]string, error) {
	text, err := c.generate(ctx, aliasPrompt(name))
	if err != nil {
		return nil, err
	}

	aliases, err := parseAliases(text)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("aliases fetched", zap.String("ingredient", name), zap.Strings("aliases", aliases))
	return aliases, nil
}

// ExtractDish turns a free-text dish query into a structured dish
// description.
func (c *Client) ExtractDish(ctx context.Context, query string) (*domain.DishInfo, error) {
	text, err := c.generate(ctx, dishPrompt(query))
	if err != nil {
		return nil, err
	}

	dish, err := parseDish(text)
	if err != nil {
		c.logger.Warn("dish extraction returned unusable JSON",
			zap.String("query", query),
			zap.Error(err),
		)
		return nil, err
	}

	c.logger.Debug("dish extracted",
		zap.String("query", query),
		zap.String("dish", dish.DishName),
		zap.Int("ingredients", len(dish.Ingredients)),
	)
	return dish, nil
}

// truncate shortens s to at most n bytes without splitting a rune
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
