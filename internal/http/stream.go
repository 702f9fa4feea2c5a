package httpx

import (
	"net/http"
	"time"

	"github.com/alemt19/ats-sub001/internal/ws"
)

func (r *Router) handleActivityWS(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	client := ws.NewClient(conn, r.logger)
	r.hub.Register(ws.TopicActivity, client)
	go func() {
		defer r.hub.Unregister(ws.TopicActivity, client)
		client.Listen()
	}()
}

func (r *Router) handleActivitySSE(w http.ResponseWriter, req *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeFailure(w, req, http.StatusInternalServerError, "streaming unsupported", nil)
		return
	}
	headers := w.Header()
	headers.Set("Content-Type", "text/event-stream")
	headers.Set("Cache-Control", "no-cache")
	headers.Set("Connection", "keep-alive")
	headers.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	client := ws.NewSSEClient(w, flusher, "activity", r.logger)
	r.hub.Register(ws.TopicActivity, client)
	defer func() {
		r.hub.Unregister(ws.TopicActivity, client)
		client.Close()
	}()

	ticker := time.NewTicker(sseHeartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-req.Context().Done():
			return
		case <-ticker.C:
			if err := client.Heartbeat(); err != nil {
				return
			}
		}
	}
}
