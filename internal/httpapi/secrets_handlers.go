package httpapi

import (
	"net/http"
	"strings"

	"internhunt-engine/internal/secrets"
)

type SecretsHandler struct {
	Deps Deps
}

type setIMAPPasswordReq struct {
	Password string `json:"password"`
}

func (h SecretsHandler) account() string {
	return secrets.IMAPKeyringAccount(h.Deps.config().Email)
}

func (h SecretsHandler) SetIMAPPassword(w http.ResponseWriter, r *http.Request) {
	var req setIMAPPasswordReq
	if _, err := decodeBody(r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Password) == "" {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "password is required")
		return
	}
	if err := secrets.SetIMAPPassword(h.account(), req.Password); err != nil {
		WriteError(w, r, http.StatusBadRequest, "keyring_failed", "failed to store password: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h SecretsHandler) DeleteIMAPPassword(w http.ResponseWriter, r *http.Request) {
	if err := secrets.DeleteIMAPPassword(h.account()); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "keyring_failed", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h SecretsHandler) HasIMAPPassword(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]bool{"configured": secrets.HasIMAPPassword(h.account())})
}
