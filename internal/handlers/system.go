package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tirestock-platform/api/internal/httpx"
)

type systemStatus struct {
	Connected bool   `json:"connected"`
	Reason    string `json:"reason,omitempty"`
	Env       string `json:"env"`
}

// GetSystemStatus probes the database and reports whether the service is
// fully operational, running against an uninitialized schema, or cut off
// from the database entirely.
func (s *Server) GetSystemStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.Config.ProbeTimeout)
	defer cancel()

	status := s.Store.Probe(ctx)
	httpx.WriteJSON(w, http.StatusOK, systemStatus{
		Connected: status.Connected,
		Reason:    status.Reason,
		Env:       s.Config.Env,
	})
}

// GetEvents streams change notifications as server-sent events. Each event
// names the collection that changed and the kind of change; clients refetch
// whatever they mirror.
func (s *Server) GetEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		httpx.WriteError(w, r, http.StatusInternalServerError, "streaming_unsupported", "Response writer does not support streaming", nil)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	notifications, cancel := s.Hub.Watch()
	defer cancel()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case n, open := <-notifications:
			if !open {
				return
			}
			payload, err := json.Marshal(n)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: change\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
