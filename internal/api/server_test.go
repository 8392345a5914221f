package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keypulse/internal/config"
	"keypulse/internal/engine"
	"keypulse/internal/protocol"
)

func testServer(t *testing.T, token string) (*Server, *engine.Control) {
	t.Helper()
	cfg := config.Default()
	cfg.ProcessName = "notepad"
	cfg.KeySequence = []config.Step{{Key: "r", IntervalAfter: config.Duration(time.Second)}}

	ctl := engine.NewControl()
	s := NewServer(cfg, ctl, token, zerolog.Nop())
	return s, ctl
}

func TestStatusEndpoint(t *testing.T) {
	s, _ := testServer(t, "")
	s.Report(engine.Event{Type: engine.EventSent, Key: "r"})
	s.Report(engine.Event{Type: engine.EventSent, Key: "r"})

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	s.handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got protocol.StatusPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "notepad", got.Process)
	assert.Equal(t, "sequential", got.Mode)
	assert.False(t, got.Paused)
	assert.True(t, got.Running)
	assert.Equal(t, uint64(2), got.KeysSent)
}

func TestPauseAndResume(t *testing.T) {
	s, ctl := testServer(t, "")
	h := s.handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/pause", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, ctl.Paused())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/resume", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, ctl.Paused())
}

func TestPauseRejectsGet(t *testing.T) {
	s, _ := testServer(t, "")

	rec := httptest.NewRecorder()
	s.handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/pause", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAuthToken(t *testing.T) {
	s, _ := testServer(t, "sekrit")
	h := s.handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthSkipsAuth(t *testing.T) {
	s, _ := testServer(t, "sekrit")

	rec := httptest.NewRecorder()
	s.handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReportTracksCompletion(t *testing.T) {
	s, _ := testServer(t, "")
	assert.True(t, s.status().Running)

	s.Report(engine.Event{Type: engine.EventCompleted})
	assert.False(t, s.status().Running)
}

func TestWebSocketStatusAndEvents(t *testing.T) {
	s, _ := testServer(t, "")
	go s.wsMgr.start()
	defer s.wsMgr.stop()

	srv := httptest.NewServer(s.handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// A status round-trip also proves the client is registered before the
	// broadcast below.
	require.NoError(t, conn.WriteJSON(protocol.Message{Type: protocol.TypeStatusRequest}))

	var status struct {
		Type    protocol.MessageType   `json:"type"`
		Payload protocol.StatusPayload `json:"payload"`
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, conn.ReadJSON(&status))
	assert.Equal(t, protocol.TypeStatus, status.Type)
	assert.Equal(t, "notepad", status.Payload.Process)

	s.Report(engine.Event{Type: engine.EventSent, Key: "r", Step: 1, Steps: 1})

	var event struct {
		Type    protocol.MessageType  `json:"type"`
		Payload protocol.EventPayload `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, protocol.TypeEvent, event.Type)
	assert.Equal(t, string(engine.EventSent), event.Payload.Type)
	assert.Equal(t, "r", event.Payload.Key)
}

func TestWebSocketPause(t *testing.T) {
	s, ctl := testServer(t, "")
	go s.wsMgr.start()
	defer s.wsMgr.stop()

	srv := httptest.NewServer(s.handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(protocol.Message{Type: protocol.TypePause}))
	require.Eventually(t, ctl.Paused, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(protocol.Message{Type: protocol.TypeResume}))
	require.Eventually(t, func() bool { return !ctl.Paused() }, 2*time.Second, 10*time.Millisecond)
}

func TestShutdownBeforeServe(t *testing.T) {
	s, _ := testServer(t, "")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
	assert.False(t, s.status().Running)
}
