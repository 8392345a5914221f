// Package api provides an HTTP and WebSocket surface for observing and
// controlling a running session: status snapshots, pause/resume, and a live
// event stream.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"

	"github.com/rs/zerolog"

	"keypulse/internal/config"
	"keypulse/internal/engine"
	"keypulse/internal/protocol"
)

// Server exposes the control API. It also implements engine.Reporter so the
// engine's event stream feeds connected WebSocket clients.
type Server struct {
	cfg   *config.Config
	ctl   *engine.Control
	token string
	log   zerolog.Logger
	wsMgr *WSManager

	keysSent atomic.Uint64
	running  atomic.Bool

	httpSrv *http.Server
}

// NewServer creates a control API server for the given session.
func NewServer(cfg *config.Config, ctl *engine.Control, token string, log zerolog.Logger) *Server {
	s := &Server{
		cfg:   cfg,
		ctl:   ctl,
		token: token,
		log:   log,
	}
	s.wsMgr = newWSManager(s)
	s.httpSrv = &http.Server{Handler: s.handler()}
	s.running.Store(true)
	return s
}

// Start listens on the given port and serves until Shutdown. Blocking.
func (s *Server) Start(port int) error {
	go s.wsMgr.start()

	// Explicit tcp4 to avoid IPv6-only binding issues on Windows.
	addr := fmt.Sprintf("0.0.0.0:%d", port)
	ln, err := net.Listen("tcp4", addr)
	if err != nil {
		s.log.Error().Err(err).Str("addr", addr).Msg("api server failed to listen")
		return err
	}
	s.log.Info().Str("addr", addr).Msg("api server listening")

	if err := s.httpSrv.Serve(ln); err != nil && err != http.ErrServerClosed {
		s.log.Error().Err(err).Msg("api server stopped")
		return err
	}
	return nil
}

// handler builds the full route table wrapped in the middleware chain.
func (s *Server) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/pause", s.handlePause)
	mux.HandleFunc("/api/resume", s.handleResume)
	mux.HandleFunc("/ws", s.wsMgr.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return s.authMiddleware(s.recoverMiddleware(mux))
}

// Shutdown stops the HTTP server and the WebSocket manager. Safe to call
// whether or not Start has begun serving; a Serve that starts afterwards
// returns immediately.
func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)
	s.wsMgr.stop()
	return s.httpSrv.Shutdown(ctx)
}

// Report implements engine.Reporter. Sent keystrokes bump the counter and
// every event is fanned out to WebSocket clients.
func (s *Server) Report(ev engine.Event) {
	switch ev.Type {
	case engine.EventSent:
		s.keysSent.Add(1)
	case engine.EventCompleted, engine.EventCancelled, engine.EventProcessExited:
		s.running.Store(false)
	}
	s.wsMgr.broadcastEvent(ev)
}

func (s *Server) status() protocol.StatusPayload {
	return protocol.StatusPayload{
		Process:  s.cfg.ProcessName,
		Mode:     s.cfg.Mode().String(),
		Paused:   s.ctl.Paused(),
		Running:  s.running.Load(),
		KeysSent: s.keysSent.Load(),
	}
}

// recoverMiddleware prevents panics from crashing the whole server
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.log.Error().Interface("panic", err).Msg("api handler panicked")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// authMiddleware checks the bearer token if one is configured
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Str("remote", r.RemoteAddr).Msg("api request")

		// Health checks stay unauthenticated for monitoring.
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		if s.token != "" {
			if r.Header.Get("Authorization") != "Bearer "+s.token {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// handleStatus handles GET /api/status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.status())
}

// handlePause handles POST /api/pause
func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.handlePauseState(w, r, true)
}

// handleResume handles POST /api/resume
func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	s.handlePauseState(w, r, false)
}

func (s *Server) handlePauseState(w http.ResponseWriter, r *http.Request, paused bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.ctl.SetPaused(paused)
	s.wsMgr.broadcastStatus()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "ok",
		"paused": paused,
	})
}

// handleHealth handles GET /health (for monitoring)
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
