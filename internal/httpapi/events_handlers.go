package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"internhunt-engine/internal/events"
)

const keepAlive = 25 * time.Second

type EventsHandler struct {
	Hub *events.Hub
}

func (h EventsHandler) ServeSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, r, http.StatusInternalServerError, "stream_unsupported", "Streaming unsupported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, unsubscribe := h.Hub.Subscribe()
	defer unsubscribe()

	reqID := RequestIDFrom(r.Context())
	send := func(e events.Event) {
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Type, e.Encode())
		flusher.Flush()
	}
	send(events.New(reqID, events.Ping, nil))

	t := time.NewTicker(keepAlive)
	defer t.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case e, open := <-ch:
			if !open {
				return
			}
			send(e)
		case <-t.C:
			send(events.New(reqID, events.Ping, nil))
		}
	}
}
