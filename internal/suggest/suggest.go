// Package suggest asks a text-generation model for to-do items for a day.
package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"daytask/internal/task"
)

var (
	// ErrNoAPIKey is returned when a call is attempted without a key.
	ErrNoAPIKey = errors.New("API key required")

	// ErrMalformedResponse is returned when the model output is not a JSON
	// array of strings.
	ErrMalformedResponse = errors.New("malformed suggestion response")
)

// Suggester produces candidate tasks for a date.
type Suggester interface {
	// Suggest returns fresh tasks for the day described by dateContext.
	// Exactly one request is made; there is no retry.
	Suggest(ctx context.Context, dateContext, apiKey string) ([]task.Task, error)

	// Ping makes one minimal request to check that apiKey works.
	Ping(ctx context.Context, apiKey string) error
}

var stringArraySchema = jsonschema.MustCompileString("suggestions.json",
	`{"type": "array", "items": {"type": "string"}}`)

// Prompt builds the request text for dateContext.
func Prompt(dateContext string) string {
	return fmt.Sprintf("Generate 3 to 5 productive, realistic to-do list items for a person on a %s. "+
		"Keep them concise (under 10 words). Return only the array of strings.", dateContext)
}

// Parse turns model output into tasks created at now. Blank output means
// no suggestions; blank items are dropped.
func Parse(text string, now time.Time) ([]task.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := stringArraySchema.Validate(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	var items []string
	if err := json.NewDecoder(bytes.NewReader([]byte(text))).Decode(&items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	out := make([]task.Task, 0, len(items))
	for _, s := range items {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, task.New(s, now))
	}
	return out, nil
}

// DateContext renders t the way prompts refer to a day, e.g.
// "Friday, March 15th".
func DateContext(t time.Time) string {
	return fmt.Sprintf("%s, %s %d%s", t.Weekday(), t.Month(), t.Day(), ordinal(t.Day()))
}

func ordinal(n int) string {
	if n%100 >= 11 && n%100 <= 13 {
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
