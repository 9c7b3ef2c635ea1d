package http

import (
	"net/http"

	"github.com/MKhiriev/go-money-keeper/internal/utils"
)

func (h *Handler) getServerVersion(w http.ResponseWriter, r *http.Request) {
	serverVersion := h.services.AppInfoService.GetAppVersion(r.Context())

	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte(serverVersion))
}

// getServerInfo reports the version, the syncable tables and the request
// limits enforced by this server.
func (h *Handler) getServerInfo(w http.ResponseWriter, r *http.Request) {
	info := h.services.AppInfoService.GetServerInfo(r.Context())
	utils.WriteJSON(w, info, http.StatusOK)
}
