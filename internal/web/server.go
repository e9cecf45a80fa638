// Package web serves the task store over a small JSON API.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"daytask/internal/session"
)

// Server exposes one session over HTTP.
type Server struct {
	sess   *session.Session
	logger *log.Logger
	router *mux.Router
}

// NewServer creates a server for sess with all routes registered.
func NewServer(sess *session.Session) *Server {
	s := &Server{
		sess:   sess,
		logger: sess.Logger().WithPrefix("web"),
		router: mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/dates/{date}/tasks", s.getTasks).Methods(http.MethodGet)
	api.HandleFunc("/dates/{date}/tasks", s.createTask).Methods(http.MethodPost)
	api.HandleFunc("/dates/{date}/tasks/{taskID}/toggle", s.toggleTask).Methods(http.MethodPost)
	api.HandleFunc("/dates/{date}/tasks/{taskID}", s.deleteTask).Methods(http.MethodDelete)
	api.HandleFunc("/dates/{date}/suggestions", s.createSuggestions).Methods(http.MethodPost)
	api.HandleFunc("/months/{month}", s.getMonth).Methods(http.MethodGet)
	s.router.Use(s.logRequests)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "took", time.Since(start))
	})
}
