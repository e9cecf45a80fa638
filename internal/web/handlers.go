package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"daytask/internal/credential"
	"daytask/internal/task"
)

// dayResponse is the body returned for a date's tasks.
type dayResponse struct {
	Date     string      `json:"date"`
	Progress int         `json:"progress"`
	Tasks    []task.Task `json:"tasks"`
}

type monthResponse struct {
	Month string                    `json:"month"`
	Days  map[string]task.DayStatus `json:"days"`
}

type suggestionsResponse struct {
	Date  string      `json:"date"`
	Added []task.Task `json:"added"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// getTasks handles GET /api/dates/{date}/tasks.
func (s *Server) getTasks(w http.ResponseWriter, r *http.Request) {
	key, ok := dateVar(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newDay(key, s.sess.Store.Bucket(key)))
}

// createTask handles POST /api/dates/{date}/tasks.
func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	key, ok := dateVar(w, r)
	if !ok {
		return
	}

	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	text := strings.TrimSpace(body.Text)
	if text == "" {
		writeError(w, http.StatusBadRequest, "text required")
		return
	}

	bucket, err := s.sess.Store.AddTask(r.Context(), key, text)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, newDay(key, bucket))
}

// toggleTask handles POST /api/dates/{date}/tasks/{taskID}/toggle.
func (s *Server) toggleTask(w http.ResponseWriter, r *http.Request) {
	key, ok := dateVar(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["taskID"]
	if _, found := task.Find(s.sess.Store.Bucket(key), id); !found {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	bucket, err := s.sess.Store.ToggleTask(r.Context(), key, id)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newDay(key, bucket))
}

// deleteTask handles DELETE /api/dates/{date}/tasks/{taskID}.
func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	key, ok := dateVar(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["taskID"]
	if _, found := task.Find(s.sess.Store.Bucket(key), id); !found {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	if _, err := s.sess.Store.DeleteTask(r.Context(), key, id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// createSuggestions handles POST /api/dates/{date}/suggestions.
// The result is always added to the date in the URL; there is no
// selection to go stale across requests.
func (s *Server) createSuggestions(w http.ResponseWriter, r *http.Request) {
	key, ok := dateVar(w, r)
	if !ok {
		return
	}

	sg := s.sess.RequestSuggestionsFor(r.Context(), key)
	switch {
	case errors.Is(sg.Err, credential.ErrNoKey):
		writeError(w, http.StatusPreconditionFailed, sg.Err.Error())
		return
	case sg.Err != nil:
		writeError(w, http.StatusBadGateway, sg.Err.Error())
		return
	}

	added := []task.Task{}
	if len(sg.Tasks) > 0 {
		if _, err := s.sess.Store.AddTasks(r.Context(), sg.DateKey, sg.Tasks); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		added = sg.Tasks
	}
	writeJSON(w, http.StatusOK, suggestionsResponse{Date: key, Added: added})
}

// getMonth handles GET /api/months/{month}.
func (s *Server) getMonth(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["month"]
	month, err := time.Parse("2006-01", raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month: "+raw)
		return
	}

	prefix := month.Format("2006-01") + "-"
	days := map[string]task.DayStatus{}
	for k, st := range s.sess.Store.Statuses() {
		if strings.HasPrefix(k, prefix) {
			days[k] = st
		}
	}
	writeJSON(w, http.StatusOK, monthResponse{Month: month.Format("2006-01"), Days: days})
}

func newDay(key string, bucket []task.Task) dayResponse {
	sorted := task.SortForDisplay(bucket)
	if sorted == nil {
		sorted = []task.Task{}
	}
	return dayResponse{Date: key, Progress: task.Progress(bucket), Tasks: sorted}
}

func dateVar(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := mux.Vars(r)["date"]
	key, err := task.ParseDateKey(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date: "+raw)
		return "", false
	}
	return key, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
