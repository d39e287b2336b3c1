// File path: internal/api/server.go
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/rofenac/fo76-ml-db/internal/common"
	"github.com/rofenac/fo76-ml-db/internal/engine"
	"github.com/rofenac/fo76-ml-db/internal/exact"
)

// Server exposes the question-answering engine over HTTP. Sessions are
// created on first use and addressed by id, so clients keep conversation
// context across requests.
type Server struct {
	router   chi.Router
	engine   *engine.Engine
	sessions *sessionRegistry
}

func NewServer(eng *engine.Engine) (*Server, error) {
	if eng == nil {
		return nil, errors.New("engine required")
	}
	s := &Server{
		router:   chi.NewRouter(),
		engine:   eng,
		sessions: newSessionRegistry(),
	}
	s.routes()
	return s, nil
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() {
	logger := common.Logger()
	logger.Info("api: configuring routes")
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.router.Post("/v1/ask", s.handleAsk)
	s.router.Post("/v1/session/clear", s.handleSessionClear)
	s.router.Get("/v1/logs", s.handleLogs)
}

type askRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id,omitempty"`
}

type askResponse struct {
	Answer    string `json:"answer"`
	Method    string `json:"method"`
	SessionID string `json:"session_id"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, errors.New("question required"))
		return
	}
	sessionID, session, err := s.sessions.resolve(req.SessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	answer, method, err := s.engine.Ask(r.Context(), session, req.Question)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, askResponse{
		Answer:    answer,
		Method:    string(method),
		SessionID: sessionID,
	})
}

type clearRequest struct {
	SessionID string `json:"session_id"`
}

func (s *Server) handleSessionClear(w http.ResponseWriter, r *http.Request) {
	var req clearRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, errors.New("session_id required"))
		return
	}
	if !s.sessions.clear(req.SessionID) {
		writeError(w, http.StatusNotFound, errors.New("unknown session"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"logs": common.LogEntries()})
}

// statusForError maps engine failures onto HTTP statuses. Model and store
// failures are server-side; a rejected generated query is still a 502 since
// the client's request was valid.
func statusForError(err error) int {
	var genErr *exact.QueryGenerationError
	var execErr *exact.QueryExecutionError
	if errors.As(err, &genErr) || errors.As(err, &execErr) {
		return http.StatusBadGateway
	}
	if errors.Is(err, engine.ErrFormatting) || errors.Is(err, engine.ErrRetrieval) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
