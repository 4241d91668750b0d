// Package http is the console's local operational endpoint: health probes
// plus a JSON snapshot of the realtime core for debugging.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/subops/console-realtime/internal/notify"
)

// ConnectionStatus reports the push transport's externally observable state.
type ConnectionStatus interface {
	IsConnected() bool
	Attempts() int
}

// ToastState reports the visible toast count.
type ToastState interface {
	Len() int
}

// ModalState reports the success modal's state.
type ModalState interface {
	CloseOthersSignal() uint64
}

// StatusHandler serves health probes and the status snapshot
type StatusHandler struct {
	transport ConnectionStatus
	toasts    ToastState
	modal     ModalState
	bell      *notify.TicketBell
	startTime time.Time
	version   string
}

func NewStatusHandler(
	transport ConnectionStatus,
	toasts ToastState,
	modal ModalState,
	bell *notify.TicketBell,
	version string,
) *StatusHandler {
	return &StatusHandler{
		transport: transport,
		toasts:    toasts,
		modal:     modal,
		bell:      bell,
		startTime: time.Now(),
		version:   version,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version,omitempty"`
	Uptime    string `json:"uptime,omitempty"`
	Push      string `json:"push,omitempty"`
}

// StatusResponse is the debugging snapshot of the realtime core
type StatusResponse struct {
	Connected         bool   `json:"connected"`
	ReconnectAttempts int    `json:"reconnectAttempts"`
	UnreadCount       int    `json:"unreadCount"`
	ActiveToasts      int    `json:"activeToasts"`
	CloseOthersSignal uint64 `json:"closeOthersSignal"`
	Version           string `json:"version"`
	Uptime            string `json:"uptime"`
}

// HandleLiveness handles liveness probe requests (is the process running?)
func (h *StatusHandler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleReadiness handles readiness probe requests. A disconnected push
// transport is "degraded", not unhealthy: the fallback pollers keep the
// console correct, so the process still accepts traffic.
func (h *StatusHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	push := "connected"
	if !h.transport.IsConnected() {
		push = "degraded"
	}

	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Push:      push,
	})
}

// HandleStatus returns the realtime-core snapshot
func (h *StatusHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, StatusResponse{
		Connected:         h.transport.IsConnected(),
		ReconnectAttempts: h.transport.Attempts(),
		UnreadCount:       h.bell.Unread(),
		ActiveToasts:      h.toasts.Len(),
		CloseOthersSignal: h.modal.CloseOthersSignal(),
		Version:           h.version,
		Uptime:            time.Since(h.startTime).Round(time.Second).String(),
	})
}

// HandleMarkAllRead marks every ticket notification read. The console UI
// triggers this from the bell menu; it is exposed here for operators too.
func (h *StatusHandler) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.bell.MarkAllRead(ctx); err != nil {
		WriteJSON(w, http.StatusBadGateway, map[string]string{
			"error": "failed to mark notifications read",
			"code":  "UPSTREAM_ERROR",
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]int{"unreadCount": h.bell.Unread()})
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
