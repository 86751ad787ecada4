package httpapi

import "net/http"

type SourcesHandler struct {
	Sources Catalog
}

type family struct {
	Name     string   `json:"name"`
	Adapters []string `json:"adapters"`
}

func (h SourcesHandler) List(w http.ResponseWriter, r *http.Request) {
	out := []family{}
	for _, f := range h.Sources.Families() {
		names := []string{}
		for _, a := range h.Sources.Adapters(f) {
			names = append(names, a.Name())
		}
		out = append(out, family{Name: f, Adapters: names})
	}
	writeJSON(w, map[string]any{"families": out})
}
