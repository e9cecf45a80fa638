package suggest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gl "google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"daytask/internal/task"
)

const (
	// DefaultModel is the model asked for suggestions.
	DefaultModel = "gemini-2.5-flash"

	// DefaultTimeout bounds a single request.
	DefaultTimeout = 20 * time.Second
)

// GeminiClient implements Suggester against the Generative Language API.
type GeminiClient struct {
	model   string
	timeout time.Duration
	extra   []option.ClientOption
	now     func() time.Time
}

// Option configures a GeminiClient.
type Option func(*GeminiClient)

// WithModel selects the model name, with or without the "models/" prefix.
func WithModel(model string) Option {
	return func(c *GeminiClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(c *GeminiClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithClientOptions appends API client options, e.g. a custom endpoint.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(c *GeminiClient) { c.extra = append(c.extra, opts...) }
}

// WithClock overrides the creation time of suggested tasks.
func WithClock(now func() time.Time) Option {
	return func(c *GeminiClient) { c.now = now }
}

// NewGemini creates a client. The API key is supplied per call.
func NewGemini(opts ...Option) *GeminiClient {
	c := &GeminiClient{
		model:   DefaultModel,
		timeout: DefaultTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Suggest implements Suggester.
func (c *GeminiClient) Suggest(ctx context.Context, dateContext, apiKey string) ([]task.Task, error) {
	text, err := c.generate(ctx, apiKey, &gl.GenerateContentRequest{
		Contents: []*gl.Content{userText(Prompt(dateContext))},
		GenerationConfig: &gl.GenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema: &gl.Schema{
				Type:  "ARRAY",
				Items: &gl.Schema{Type: "STRING"},
			},
		},
	})
	if err != nil {
		return nil, err
	}
	return Parse(text, c.now())
}

// Ping implements Suggester.
func (c *GeminiClient) Ping(ctx context.Context, apiKey string) error {
	_, err := c.generate(ctx, apiKey, &gl.GenerateContentRequest{
		Contents: []*gl.Content{userText("ping")},
	})
	return err
}

func (c *GeminiClient) generate(ctx context.Context, apiKey string, req *gl.GenerateContentRequest) (string, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return "", ErrNoAPIKey
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	opts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, c.extra...)
	svc, err := gl.NewService(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("create generative language client: %w", err)
	}

	resp, err := svc.Models.GenerateContent(c.modelPath(), req).Context(ctx).Do()
	if err != nil {
		return "", wrapError(err)
	}
	return responseText(resp), nil
}

func (c *GeminiClient) modelPath() string {
	if strings.HasPrefix(c.model, "models/") {
		return c.model
	}
	return "models/" + c.model
}

func userText(s string) *gl.Content {
	return &gl.Content{Role: "user", Parts: []*gl.Part{{Text: s}}}
}

// responseText joins the text parts of the first candidate.
func responseText(resp *gl.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// wrapError turns API errors into short messages.
func wrapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "context deadline exceeded") {
		return fmt.Errorf("request timed out")
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("API key rejected (%d): %w", gerr.Code, err)
		case http.StatusTooManyRequests:
			return fmt.Errorf("quota exceeded: %w", err)
		}
	}
	return err
}
