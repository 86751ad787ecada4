package httpapi

import (
	"net/http"

	"internhunt-engine/internal/domain"
	"internhunt-engine/internal/logger"
)

// NewMux wires every dashboard route.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	lh := ListingsHandler{Store: d.Store}
	mux.HandleFunc("/internships", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: lh.List,
	}))
	mux.HandleFunc("/history", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: lh.History,
	}))

	sch := ScrapeHandler{
		Passes:   d.Passes,
		Defaults: func() domain.RunConfig { return d.config().Run },
	}
	mux.HandleFunc("/scrape", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sch.Run,
	}))
	mux.HandleFunc("/scrape/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sch.Status,
	}))
	mux.HandleFunc("/clear", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sch.Clear,
	}))

	mux.HandleFunc("/logs", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: LogsHandler{Path: d.LogPath}.Tail,
	}))
	mux.HandleFunc("/sources", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: SourcesHandler{Sources: d.Sources}.List,
	}))

	ch := ConfigHandler{Deps: d}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  ch.Validate,
		http.MethodPost: ch.Validate,
	}))

	sh := SecretsHandler{Deps: d}
	mux.HandleFunc("/secrets/imap", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:    sh.HasIMAPPassword,
		http.MethodPost:   sh.SetIMAPPassword,
		http.MethodDelete: sh.DeleteIMAPPassword,
	}))

	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: EventsHandler{Hub: d.Hub}.ServeSSE,
	}))
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: HealthHandler{Passes: d.Passes}.Health,
	}))
	mux.Handle("/metrics", d.Metrics.Handler())

	return mux
}

// NewHandler is the mux behind the standard middleware stack.
func NewHandler(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = logger.NewNop()
	}
	return Chain(NewMux(d), RequestID, Recover(log), AccessLog(log), Cors)
}
