package httpapi

import (
	"net/http"

	"github.com/Lynxchester/lynxchat/observability"
)

type StatsHandler struct {
	monitor *observability.Monitor
}

func NewStatsHandler(monitor *observability.Monitor) *StatsHandler {
	return &StatsHandler{monitor: monitor}
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.monitor.Snapshot())
}
