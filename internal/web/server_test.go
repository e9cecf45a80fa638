package web_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daytask/internal/persist"
	"daytask/internal/task"
	"daytask/internal/testutil"
	"daytask/internal/web"
)

type dayBody struct {
	Date     string      `json:"date"`
	Progress int         `json:"progress"`
	Tasks    []task.Task `json:"tasks"`
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestTasksLifecycle(t *testing.T) {
	sess := testutil.NewSession(persist.Nop{}, nil)
	srv := web.NewServer(sess)

	rec := do(t, srv, http.MethodGet, "/api/dates/2024-03-15/tasks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	empty := decode[dayBody](t, rec)
	assert.Equal(t, "2024-03-15", empty.Date)
	assert.Empty(t, empty.Tasks)
	assert.Contains(t, rec.Body.String(), `"tasks":[]`)

	rec = do(t, srv, http.MethodPost, "/api/dates/2024-03-15/tasks", `{"text":"  Buy milk  "}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[dayBody](t, rec)
	require.Len(t, created.Tasks, 1)
	assert.Equal(t, "Buy milk", created.Tasks[0].Text)
	id := created.Tasks[0].ID

	rec = do(t, srv, http.MethodPost, "/api/dates/2024-03-15/tasks/"+id+"/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code)
	toggled := decode[dayBody](t, rec)
	assert.True(t, toggled.Tasks[0].IsCompleted)
	assert.Equal(t, 100, toggled.Progress)

	rec = do(t, srv, http.MethodDelete, "/api/dates/2024-03-15/tasks/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, sess.Store.Bucket("2024-03-15"))
}

func TestCreateTask_Rejects(t *testing.T) {
	srv := web.NewServer(testutil.NewSession(persist.Nop{}, nil))

	rec := do(t, srv, http.MethodPost, "/api/dates/2024-03-15/tasks", `{"text":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "text required")

	rec = do(t, srv, http.MethodPost, "/api/dates/2024-03-15/tasks", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/dates/2024-02-30/tasks", `{"text":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid date: 2024-02-30")
}

func TestUnknownTask(t *testing.T) {
	srv := web.NewServer(testutil.NewSession(persist.Nop{}, nil))

	rec := do(t, srv, http.MethodPost, "/api/dates/2024-03-15/tasks/nope/toggle", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, srv, http.MethodDelete, "/api/dates/2024-03-15/tasks/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSuggestions(t *testing.T) {
	sugg := &testutil.FakeSuggester{Texts: []string{"Plan week", "Stretch"}}
	sess := testutil.NewSession(persist.Nop{}, sugg)
	srv := web.NewServer(sess)

	rec := do(t, srv, http.MethodPost, "/api/dates/2024-03-20/suggestions", "")
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
	assert.Equal(t, 0, sugg.SuggestCalls)

	sess.Keys.SetKey("k")
	rec = do(t, srv, http.MethodPost, "/api/dates/2024-03-20/suggestions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Wednesday, March 20th", sugg.LastContext)

	texts := []string{}
	for _, tk := range sess.Store.Bucket("2024-03-20") {
		texts = append(texts, tk.Text)
	}
	assert.Equal(t, []string{"Plan week", "Stretch"}, texts)
}

func TestSuggestions_BackendError(t *testing.T) {
	sugg := &testutil.FakeSuggester{SuggestErr: context.DeadlineExceeded}
	sess := testutil.NewSession(persist.Nop{}, sugg)
	sess.Keys.SetKey("k")

	rec := do(t, web.NewServer(sess), http.MethodPost, "/api/dates/2024-03-20/suggestions", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Empty(t, sess.Store.Bucket("2024-03-20"))
}

func TestMonth(t *testing.T) {
	sess := testutil.NewSession(persist.Nop{}, nil)
	ctx := context.Background()
	_, err := sess.Store.AddTask(ctx, "2024-03-02", "open")
	require.NoError(t, err)
	b, err := sess.Store.AddTask(ctx, "2024-03-09", "done")
	require.NoError(t, err)
	_, err = sess.Store.ToggleTask(ctx, "2024-03-09", b[0].ID)
	require.NoError(t, err)
	_, err = sess.Store.AddTask(ctx, "2024-04-01", "next month")
	require.NoError(t, err)

	rec := do(t, web.NewServer(sess), http.MethodGet, "/api/months/2024-03", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[struct {
		Month string                    `json:"month"`
		Days  map[string]task.DayStatus `json:"days"`
	}](t, rec)
	assert.Equal(t, "2024-03", body.Month)
	assert.Equal(t, map[string]task.DayStatus{
		"2024-03-02": {HasTasks: true},
		"2024-03-09": {HasTasks: true, AllCompleted: true},
	}, body.Days)

	rec = do(t, web.NewServer(sess), http.MethodGet, "/api/months/2024-13", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	rec := do(t, web.NewServer(testutil.NewSession(persist.Nop{}, nil)), http.MethodPut, "/api/dates/2024-03-15/tasks", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
