package httpapi

import (
	"net/http"

	"internhunt-engine/internal/domain"
	"internhunt-engine/internal/store"
)

type ListingsHandler struct {
	Store Snapshotter
}

func (h ListingsHandler) load(w http.ResponseWriter, r *http.Request) (store.Snapshot, bool) {
	snap, err := h.Store.Load(r.Context())
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "store_unavailable", err.Error())
		return store.Snapshot{}, false
	}
	return snap, true
}

// List returns the dataset newest scrape date first.
func (h ListingsHandler) List(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.load(w, r)
	if !ok {
		return
	}
	rows := snap.Listings
	if rows == nil {
		rows = []domain.Listing{}
	}
	writeJSON(w, rows)
}

type historyResponse struct {
	LastRun    string             `json:"last_run"`
	TotalSeen  int                `json:"total_scraped"`
	RunHistory []domain.RunRecord `json:"run_history"`
}

func (h ListingsHandler) History(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.load(w, r)
	if !ok {
		return
	}
	hist := snap.History
	if hist == nil {
		hist = []domain.RunRecord{}
	}
	writeJSON(w, historyResponse{LastRun: snap.LastRun, TotalSeen: snap.TotalSeen, RunHistory: hist})
}
