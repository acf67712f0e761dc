// Package server exposes the pipeline engine over HTTP: a blocking ask
// endpoint, a server-sent-events streaming variant, and a health probe.
package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/vigilaperu/chaski/internal/pipeline"
)

// Server wires the engine to HTTP handlers.
type Server struct {
	engine *pipeline.Engine
}

// New creates a server over an engine.
func New(engine *pipeline.Engine) *Server {
	return &Server{engine: engine}
}

// Router builds the HTTP route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/api/health", s.handleHealth)
	r.Post("/api/ask", s.handleAsk)
	r.Post("/api/ask/stream", s.handleAskStream)

	return r
}

type askRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
}

type askResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeAsk(w, r)
	if !ok {
		return
	}

	response, sessionID, err := s.engine.Submit(r.Context(), req.Query, req.SessionID)
	if err != nil {
		log.Error().Err(err).Str("session", sessionID).Msg("Turn failed")
		writeError(w, http.StatusBadGateway, "no se pudo completar la consulta")
		return
	}

	writeJSON(w, http.StatusOK, askResponse{Response: response, SessionID: sessionID})
}

func (s *Server) handleAskStream(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeAsk(w, r)
	if !ok {
		return
	}

	flusher, canFlush := w.(http.Flusher)
	if !canFlush {
		writeError(w, http.StatusInternalServerError, "streaming no soportado")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for chunk := range s.engine.SubmitStream(r.Context(), req.Query, req.SessionID) {
		data, err := json.Marshal(chunk)
		if err != nil {
			log.Error().Err(err).Msg("Chunk encoding failed")
			return
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			// Consumer went away; SubmitStream observes the request context.
			return
		}
		flusher.Flush()
	}
}

func decodeAsk(w http.ResponseWriter, r *http.Request) (askRequest, bool) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "cuerpo de la petición inválido")
		return req, false
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query es obligatorio")
		return req, false
	}
	return req, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("Response encoding failed")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
