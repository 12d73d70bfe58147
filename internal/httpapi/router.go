package httpapi

import "net/http"

// NewMux registers every route on a fresh mux.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	hh := HealthHandler{Backend: d.Runner.Backend()}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	// Scrape
	sch := ScrapeHandler{
		CfgVal: d.CfgVal,
		Runner: d.Runner,
		Status: d.Status,
		Hub:    d.Hub,
		Logger: d.Logger.Named("scrape"),
	}
	mux.HandleFunc("/scrape", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  sch.Scrape,
		http.MethodPost: sch.Scrape,
	}))
	mux.HandleFunc("/scrape/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sch.StatusGet,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	// Config
	ch := ConfigHandler{CfgVal: d.CfgVal, UserCfgPath: d.UserCfgPath}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	return mux
}

// NewHandler wraps NewMux in the standard middleware chain.
func NewHandler(d Deps) http.Handler {
	if d.Status == nil {
		d.Status = &StatusTracker{}
	}
	return Chain(NewMux(d),
		RequestID,
		Recover(d.Logger.Named("http")),
		AccessLog(d.Logger.Named("http")),
		Cors,
	)
}
