package httpapi

import "net/http"

type HealthHandler struct {
	Passes Passes
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"ok":      true,
		"running": h.Passes != nil && h.Passes.Running(),
	})
}
