package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/workstream-hr/workstream/pkg/composables"
	"github.com/workstream-hr/workstream/pkg/configuration"
	"github.com/workstream-hr/workstream/pkg/httpapi"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	// The status line is already on the wire if encoding fails.
	_ = httpapi.WriteJSON(w, status, payload)
}

func writeAPIError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	meta := map[string]string{}
	header := strings.TrimSpace(configuration.Use().RequestIDHeader)
	if header == "" {
		header = "X-Request-ID"
	}
	if requestID := strings.TrimSpace(w.Header().Get(header)); requestID != "" {
		meta["request_id"] = requestID
	}
	if err := httpapi.WriteError(w, status, code, message, meta); err != nil && r != nil {
		composables.UseLogger(r.Context()).WithError(err).Warn("failed to write error response")
	}
}

func pathID(r *http.Request) (uint, bool) {
	raw := mux.Vars(r)["id"]
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || parsed == 0 {
		return 0, false
	}
	return uint(parsed), true
}

func queryUint(r *http.Request, name string) (uint, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, false
	}
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(parsed), true
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}
