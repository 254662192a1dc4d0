package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/session"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const (
	streamKeepalive = 30 * time.Second
	wsWriteTimeout  = 10 * time.Second
	wsPongTimeout   = 60 * time.Second
)

type SessionHandler interface {
	Start(w http.ResponseWriter, r *http.Request)
	End(w http.ResponseWriter, r *http.Request)
	HalfDay(w http.ResponseWriter, r *http.Request)
	StartBreak(w http.ResponseWriter, r *http.Request)
	EndBreak(w http.ResponseWriter, r *http.Request)
	Active(w http.ResponseWriter, r *http.Request)
	CanStartToday(w http.ResponseWriter, r *http.Request)
	History(w http.ResponseWriter, r *http.Request)

	// UserHistory is the admin view of another user's sessions
	UserHistory(w http.ResponseWriter, r *http.Request)

	Stream(w http.ResponseWriter, r *http.Request)
	WebSocket(w http.ResponseWriter, r *http.Request)
}

type sessionHandlerImpl struct {
	sessionService session.SessionService
	upgrader       websocket.Upgrader
}

func NewSessionHandler(sessionService session.SessionService, allowedOrigins []string) SessionHandler {
	return &sessionHandlerImpl{
		sessionService: sessionService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		return slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
	}
}

// Start handles POST /sessions/start
func (h *sessionHandlerImpl) Start(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)

	result, err := h.sessionService.StartSession(r.Context(), userID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Session started", result)
}

// End handles POST /sessions/end
func (h *sessionHandlerImpl) End(w http.ResponseWriter, r *http.Request) {
	var req session.EndSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("EndSession decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.UserID = getUserIDFromContext(r)

	result, err := h.sessionService.EndSession(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Session ended", result)
}

// HalfDay handles POST /leaves/half-day
func (h *sessionHandlerImpl) HalfDay(w http.ResponseWriter, r *http.Request) {
	var req session.HalfDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("ApplyHalfDay decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.UserID = getUserIDFromContext(r)

	result, err := h.sessionService.ApplyHalfDay(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Half day applied", result)
}

// StartBreak handles POST /breaks/start
func (h *sessionHandlerImpl) StartBreak(w http.ResponseWriter, r *http.Request) {
	result, err := h.sessionService.StartBreak(r.Context(), getUserIDFromContext(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Break started", result)
}

// EndBreak handles POST /breaks/end
func (h *sessionHandlerImpl) EndBreak(w http.ResponseWriter, r *http.Request) {
	result, err := h.sessionService.EndBreak(r.Context(), getUserIDFromContext(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Break ended", result)
}

// Active handles GET /sessions/active. data is null when nothing is open.
func (h *sessionHandlerImpl) Active(w http.ResponseWriter, r *http.Request) {
	result, err := h.sessionService.GetActiveSession(r.Context(), getUserIDFromContext(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// CanStartToday handles GET /sessions/can-start-today
func (h *sessionHandlerImpl) CanStartToday(w http.ResponseWriter, r *http.Request) {
	result, err := h.sessionService.CanStartToday(r.Context(), getUserIDFromContext(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// History handles GET /sessions/history
func (h *sessionHandlerImpl) History(w http.ResponseWriter, r *http.Request) {
	h.writeHistory(w, r, getUserIDFromContext(r))
}

// UserHistory handles GET /admin/users/{userID}/sessions
func (h *sessionHandlerImpl) UserHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if !validator.IsValidUUID(userID) {
		response.BadRequest(w, "Invalid user ID", nil)
		return
	}

	h.writeHistory(w, r, userID)
}

func (h *sessionHandlerImpl) writeHistory(w http.ResponseWriter, r *http.Request, userID string) {
	entries, err := h.sessionService.History(r.Context(), userID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result := slices.Collect(entries)
	if result == nil {
		result = []session.HistoryEntry{}
	}
	response.Success(w, result)
}

// Stream handles GET /sessions/stream as server-sent events.
func (h *sessionHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.sessionService.Subscribe(userID)
	defer cleanup()

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"user_id\":%q}\n\n", userID)
	flusher.Flush()

	keepalive := time.NewTicker(streamKeepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				slog.Error("Failed to encode session event", "user_id", userID, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

type wsMessage struct {
	Type      string      `json:"type"`
	Timestamp int64       `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// WebSocket handles GET /sessions/ws. Client messages are ignored; the socket only
// carries server pushes and control frames.
func (h *sessionHandlerImpl) WebSocket(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "user_id", userID, "error", err)
		return
	}
	defer conn.Close()

	events, cleanup := h.sessionService.Subscribe(userID)
	defer cleanup()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					slog.Debug("WebSocket read error", "user_id", userID, "error", err)
				}
				return
			}
		}
	}()

	write := func(msg wsMessage) error {
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		return conn.WriteJSON(msg)
	}

	if err := write(wsMessage{Type: "connected", Timestamp: time.Now().Unix()}); err != nil {
		return
	}

	keepalive := time.NewTicker(streamKeepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := write(wsMessage{Type: event.Event, Timestamp: time.Now().Unix(), Data: event.Data}); err != nil {
				return
			}

		case <-keepalive.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				return
			}

		case <-closed:
			return
		}
	}
}
