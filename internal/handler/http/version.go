package http

import (
	"net/http"
)

// getServerVersion answers the reachability probe clients send before they
// store an http:// sync folder.
func (h *Handler) getServerVersion(w http.ResponseWriter, r *http.Request) {
	version := h.services.AppInfoService.GetAppVersion(r.Context())

	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte(version))
}
