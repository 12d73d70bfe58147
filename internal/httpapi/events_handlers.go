package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"jobscout-engine/internal/events"
)

const defaultKeepAlive = 15 * time.Second

// EventsHandler streams hub events as server-sent events. Clients may narrow
// the stream with ?run_id= and a comma-separated ?types= list.
type EventsHandler struct {
	Hub       *events.Hub
	KeepAlive time.Duration
}

func (h EventsHandler) ServeSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, r, http.StatusInternalServerError, "stream_unsupported", "Streaming unsupported")
		return
	}

	sub := h.Hub.Subscribe(streamFilter(r))
	defer h.Hub.Unsubscribe(sub)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	writeSSE(w, events.New(RequestIDFrom(r.Context()), "", events.TypePing, nil))
	flusher.Flush()

	every := h.KeepAlive
	if every <= 0 {
		every = defaultKeepAlive
	}
	keepAlive := time.NewTicker(every)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepAlive.C:
			// comment lines keep proxies from closing an idle stream
			fmt.Fprint(w, ": keepalive\n\n")
		case e, ok := <-sub.C:
			if !ok {
				return
			}
			writeSSE(w, e)
		}
		flusher.Flush()
	}
}

func streamFilter(r *http.Request) events.Filter {
	f := events.Filter{RunID: strings.TrimSpace(r.URL.Query().Get("run_id"))}
	for _, t := range strings.Split(r.URL.Query().Get("types"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			f.Types = append(f.Types, t)
		}
	}
	return f
}

func writeSSE(w http.ResponseWriter, e events.Event) {
	if e.Seq > 0 {
		fmt.Fprintf(w, "id: %d\n", e.Seq)
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Type, e.Encode())
}
