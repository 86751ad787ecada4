package httpapi

import (
	"errors"
	"net/http"

	"internhunt-engine/internal/domain"
	"internhunt-engine/internal/poll"
	"internhunt-engine/internal/scrape"
	"internhunt-engine/internal/source"
	"internhunt-engine/internal/store"
)

type ScrapeHandler struct {
	Passes Passes
	// Defaults supplies the run config used when the request body is empty.
	Defaults func() domain.RunConfig
}

type runRequest struct {
	domain.RunConfig
	DryRun bool `json:"dry_run"`
}

func (h ScrapeHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	ok, err := decodeBody(r, &req)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if !ok && h.Defaults != nil {
		req.RunConfig = h.Defaults()
	}

	out, err := h.Passes.Start(req.RunConfig, scrape.Options{DryRun: req.DryRun})
	switch {
	case errors.Is(err, source.ErrUnknownSource):
		WriteError(w, r, http.StatusBadRequest, "unknown_source", err.Error())
		return
	case errors.Is(err, domain.ErrInvalidRunConfig):
		WriteError(w, r, http.StatusBadRequest, "invalid_run_config", err.Error())
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	status := http.StatusAccepted
	if out == poll.AlreadyRunning {
		status = http.StatusOK
	}
	WriteJSON(w, status, map[string]string{"status": string(out)})
}

func (h ScrapeHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Passes.Status())
}

// Clear wipes dataset, seen-set, history and run log. 409 while a pass runs.
func (h ScrapeHandler) Clear(w http.ResponseWriter, r *http.Request) {
	err := h.Passes.Reset(r.Context())
	if errors.Is(err, poll.ErrRunInProgress) || errors.Is(err, store.ErrPassInProgress) {
		WriteError(w, r, http.StatusConflict, "run_in_progress", "cannot clear data while a scrape is running")
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "reset_failed", err.Error())
		return
	}
	writeJSON(w, map[string]any{"ok": true})
}
