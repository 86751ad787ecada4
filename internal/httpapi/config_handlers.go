package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"internhunt-engine/internal/config"
)

// ConfigError is the body of a rejected config: the usual error envelope plus
// the full validation so the dashboard can flag each field.
type ConfigError struct {
	APIError
	Validation config.Validation `json:"validation"`
}

type ConfigHandler struct {
	Deps Deps
}

var errNoConfigPath = errors.New("engine has no user config path")

func (h ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Deps.config())
}

// Put replaces the user config. The saved file is reloaded so env overrides
// still win over what the dashboard sent.
func (h ConfigHandler) Put(w http.ResponseWriter, r *http.Request) {
	candidate, ok := h.readCandidate(w, r)
	if !ok {
		return
	}
	normalized, vr := config.NormalizeAndValidate(candidate)
	if !vr.OK() {
		writeConfigError(w, r, vr)
		return
	}

	saved, err := h.apply(normalized)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "config_apply_failed", err.Error())
		return
	}
	writeJSON(w, saved)
}

// Validate checks the live config, or the posted one without saving it.
func (h ConfigHandler) Validate(w http.ResponseWriter, r *http.Request) {
	candidate := h.Deps.config()
	if r.Method == http.MethodPost {
		var ok bool
		if candidate, ok = h.readCandidate(w, r); !ok {
			return
		}
	}
	_, vr := config.NormalizeAndValidate(candidate)
	writeJSON(w, vr)
}

func (h ConfigHandler) Path(w http.ResponseWriter, r *http.Request) {
	abs, err := filepath.Abs(h.Deps.UserCfgPath)
	if err != nil || h.Deps.UserCfgPath == "" {
		WriteError(w, r, http.StatusNotFound, "no_config_path", errNoConfigPath.Error())
		return
	}
	_, statErr := os.Stat(abs)
	writeJSON(w, map[string]any{"path": abs, "exists": statErr == nil})
}

func (h ConfigHandler) readCandidate(w http.ResponseWriter, r *http.Request) (config.Config, bool) {
	var c config.Config
	ok, err := decodeBody(r, &c)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", err.Error())
		return c, false
	}
	if !ok {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "config body is required")
		return c, false
	}
	return c, true
}

// apply saves cfg, reads it back and publishes the result.
func (h ConfigHandler) apply(cfg config.Config) (config.Config, error) {
	d := h.Deps
	if d.UserCfgPath == "" {
		return config.Config{}, errNoConfigPath
	}
	if err := config.SaveAtomic(d.UserCfgPath, cfg); err != nil {
		return config.Config{}, fmt.Errorf("save config: %w", err)
	}

	saved := cfg
	if d.LoadCfg != nil {
		var err error
		if saved, err = d.LoadCfg(); err != nil {
			return config.Config{}, fmt.Errorf("saved but reload failed: %w", err)
		}
	}
	if d.CfgVal != nil {
		d.CfgVal.Store(saved)
	}
	if d.OnConfig != nil {
		d.OnConfig(saved)
	}
	return saved, nil
}

func writeConfigError(w http.ResponseWriter, r *http.Request, vr config.Validation) {
	var e ConfigError
	e.Error.Code = "invalid_config"
	e.Error.Message = strings.Join(vr.Errors, "; ")
	e.Error.RequestID = RequestIDFrom(r.Context())
	e.Validation = vr
	WriteJSON(w, http.StatusUnprocessableEntity, e)
}
