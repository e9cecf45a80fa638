package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

var fixedNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func TestParse(t *testing.T) {
	ts, err := Parse(`["Buy milk", "  ", "Call mom"]`, fixedNow)
	require.NoError(t, err)
	require.Len(t, ts, 2)
	assert.Equal(t, "Buy milk", ts[0].Text)
	assert.Equal(t, "Call mom", ts[1].Text)
	for _, tk := range ts {
		assert.False(t, tk.IsCompleted)
		assert.NotEmpty(t, tk.ID)
		assert.Equal(t, fixedNow.UnixMilli(), tk.CreatedAt)
	}
	assert.NotEqual(t, ts[0].ID, ts[1].ID)
}

func TestParse_Empty(t *testing.T) {
	ts, err := Parse("", fixedNow)
	require.NoError(t, err)
	assert.Empty(t, ts)

	ts, err = Parse("[]", fixedNow)
	require.NoError(t, err)
	assert.Empty(t, ts)
}

func TestParse_Malformed(t *testing.T) {
	for _, in := range []string{`not json`, `{"a":1}`, `[1, 2]`, `["ok", null]`} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in, fixedNow)
			assert.True(t, errors.Is(err, ErrMalformedResponse), "got %v", err)
		})
	}
}

func TestDateContext(t *testing.T) {
	tests := map[string]string{
		"2024-03-15": "Friday, March 15th",
		"2024-03-01": "Friday, March 1st",
		"2024-03-02": "Saturday, March 2nd",
		"2024-03-03": "Sunday, March 3rd",
		"2024-03-11": "Monday, March 11th",
		"2024-03-12": "Tuesday, March 12th",
		"2024-03-13": "Wednesday, March 13th",
		"2024-03-21": "Thursday, March 21st",
		"2024-03-22": "Friday, March 22nd",
		"2024-03-31": "Sunday, March 31st",
	}
	for in, want := range tests {
		d, err := time.Parse("2006-01-02", in)
		require.NoError(t, err)
		assert.Equal(t, want, DateContext(d), in)
	}
}

func TestPrompt(t *testing.T) {
	p := Prompt("Friday, March 15th")
	assert.Contains(t, p, "3 to 5")
	assert.Contains(t, p, "Friday, March 15th")
}

type geminiFake struct {
	status int
	body   string
	calls  atomic.Int32
	last   map[string]interface{}
	path   string
}

func (g *geminiFake) handler(w http.ResponseWriter, r *http.Request) {
	g.calls.Add(1)
	g.path = r.URL.Path
	var req map[string]interface{}
	_ = json.NewDecoder(r.Body).Decode(&req)
	g.last = req
	w.Header().Set("Content-Type", "application/json")
	if g.status != 0 {
		w.WriteHeader(g.status)
	}
	_, _ = w.Write([]byte(g.body))
}

func newFakeClient(t *testing.T, g *geminiFake) *GeminiClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(g.handler))
	t.Cleanup(srv.Close)
	return NewGemini(
		WithClock(func() time.Time { return fixedNow }),
		WithTimeout(5*time.Second),
		WithClientOptions(option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client())),
	)
}

func candidate(text string) string {
	b, _ := json.Marshal(map[string]interface{}{
		"candidates": []interface{}{
			map[string]interface{}{
				"content": map[string]interface{}{
					"role":  "model",
					"parts": []interface{}{map[string]interface{}{"text": text}},
				},
			},
		},
	})
	return string(b)
}

func TestGemini_Suggest(t *testing.T) {
	g := &geminiFake{body: candidate(`["Plan the week","Go for a run","Read a chapter"]`)}
	c := newFakeClient(t, g)

	ts, err := c.Suggest(context.Background(), "Friday, March 15th", "test-key")
	require.NoError(t, err)
	require.Len(t, ts, 3)
	assert.Equal(t, "Plan the week", ts[0].Text)
	assert.EqualValues(t, 1, g.calls.Load())
	assert.True(t, strings.HasSuffix(g.path, "models/gemini-2.5-flash:generateContent"), g.path)

	cfg, ok := g.last["generationConfig"].(map[string]interface{})
	require.True(t, ok, "generationConfig missing")
	assert.Equal(t, "application/json", cfg["responseMimeType"])
	schema, ok := cfg["responseSchema"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ARRAY", schema["type"])
}

func TestGemini_MalformedResponse(t *testing.T) {
	g := &geminiFake{body: candidate(`here are some ideas`)}
	c := newFakeClient(t, g)

	_, err := c.Suggest(context.Background(), "Friday, March 15th", "test-key")
	assert.True(t, errors.Is(err, ErrMalformedResponse))
}

func TestGemini_NoCandidates(t *testing.T) {
	g := &geminiFake{body: `{"candidates":[]}`}
	c := newFakeClient(t, g)

	ts, err := c.Suggest(context.Background(), "Friday, March 15th", "test-key")
	require.NoError(t, err)
	assert.Empty(t, ts)
}

func TestGemini_RejectedKeyNoRetry(t *testing.T) {
	g := &geminiFake{
		status: http.StatusForbidden,
		body:   `{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`,
	}
	c := newFakeClient(t, g)

	err := c.Ping(context.Background(), "bad-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key rejected")
	assert.EqualValues(t, 1, g.calls.Load())
}

func TestGemini_EmptyKey(t *testing.T) {
	g := &geminiFake{body: candidate(`[]`)}
	c := newFakeClient(t, g)

	_, err := c.Suggest(context.Background(), "Friday, March 15th", "  ")
	assert.ErrorIs(t, err, ErrNoAPIKey)
	assert.ErrorIs(t, c.Ping(context.Background(), ""), ErrNoAPIKey)
	assert.EqualValues(t, 0, g.calls.Load())
}

func TestGemini_Ping(t *testing.T) {
	g := &geminiFake{body: candidate("pong")}
	c := newFakeClient(t, g)
	assert.NoError(t, c.Ping(context.Background(), "test-key"))
}
