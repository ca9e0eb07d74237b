package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"nfestatus/app/internal/cache"
	"nfestatus/app/internal/database"
)

// HandleRecompute flushes the cached pass and reruns the engine.
func HandleRecompute(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cache.ReportCache.Delete(resultCacheKey)

		res, err := s.result(r)
		if err != nil {
			log.Printf("recompute failed: %v", err)
			http.Error(w, "computation failed", http.StatusInternalServerError)
			return
		}

		_ = database.InsertLog(database.LogLevelInfo, database.LogCategoryEngine, "",
			"Recompute triggered", fmt.Sprintf("run_id=%s entities=%d faults=%d", res.RunID, len(res.Reports), len(res.Faults)))
		writeJSON(w, http.StatusOK, map[string]any{
			"run_id":   res.RunID,
			"entities": len(res.Reports),
			"faults":   res.Faults,
		})
	}
}

// HandleRetention prunes closed history records older than maxDays.
func HandleRetention(maxDays int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		removed, err := database.ApplyRetention(maxDays)
		if err != nil {
			log.Printf("retention failed: %v", err)
			http.Error(w, "retention failed", http.StatusInternalServerError)
			return
		}

		_ = database.InsertLog(database.LogLevelInfo, database.LogCategorySystem, "",
			"Retention applied", fmt.Sprintf("max_days=%d removed=%d", maxDays, removed))
		writeJSON(w, http.StatusOK, map[string]int64{"removed": removed})
	}
}

// HandleLogs returns recent system log entries with optional filters.
func HandleLogs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 100
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
				limit = n
			}
		}

		logs, err := database.GetLogs(limit,
			r.URL.Query().Get("level"),
			r.URL.Query().Get("category"),
			r.URL.Query().Get("service"), 0)
		if err != nil {
			http.Error(w, "query failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, logs)
	}
}
