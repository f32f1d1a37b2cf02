// File path: internal/api/logs_handler.go
package api

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/nicodishanthj/Katral_realty/internal/common"
)

// handleLogs returns the captured log history, oldest first. An optional
// "component" query narrows it down and "limit" keeps only the newest N.
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	entries := common.LogEntries()
	if component := r.URL.Query().Get("component"); component != "" {
		filtered := entries[:0]
		for _, entry := range entries {
			if entry.Component == component {
				filtered = append(filtered, entry)
			}
		}
		entries = filtered
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Time.Before(entries[j].Time)
	})
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer", err)
			return
		}
		if limit < len(entries) {
			entries = entries[len(entries)-limit:]
		}
	}
	if entries == nil {
		entries = []common.LogEntry{}
	}
	writeJSON(w, http.StatusOK, logsResponse{Entries: entries})
}
