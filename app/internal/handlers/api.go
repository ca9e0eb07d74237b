package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"nfestatus/app/internal/cache"
	"nfestatus/app/internal/database"
	"nfestatus/app/internal/models"
	"nfestatus/app/internal/timeline"
)

const resultCacheKey = "engine:result"

// Server bundles the dependencies the API handlers need.
type Server struct {
	Engine  *timeline.Engine
	Store   *database.Store
	Workers int
}

// result returns the latest engine pass, recomputing when the cache has
// expired or been flushed.
func (s *Server) result(r *http.Request) (*timeline.Result, error) {
	if cached, ok := cache.ReportCache.Get(resultCacheKey); ok {
		if res, ok := cached.(*timeline.Result); ok {
			return res, nil
		}
	}

	res, err := s.Engine.Run(r.Context(), s.Store, s.Workers)
	if err != nil {
		return nil, err
	}
	cache.ReportCache.Set(resultCacheKey, res)
	return res, nil
}

// HandleSLA returns daily SLA rows, optionally filtered by autorizador and
// day (YYYY-MM-DD).
func HandleSLA(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := s.result(r)
		if err != nil {
			log.Printf("sla computation failed: %v", err)
			http.Error(w, "computation failed", http.StatusInternalServerError)
			return
		}

		autorizador := r.URL.Query().Get("autorizador")
		dia := r.URL.Query().Get("dia")

		out := make([]*models.DailySLA, 0)
		for entity, reports := range res.Reports {
			if autorizador != "" && entity != autorizador {
				continue
			}
			for _, rep := range reports {
				if rep.SLA == nil {
					continue
				}
				if dia != "" && rep.Dia != dia {
					continue
				}
				out = append(out, rep.SLA)
			}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// HandleReports returns full day reports for one autorizador.
func HandleReports(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		autorizador := r.PathValue("autorizador")

		res, err := s.result(r)
		if err != nil {
			log.Printf("report computation failed: %v", err)
			http.Error(w, "computation failed", http.StatusInternalServerError)
			return
		}

		reports, ok := res.Reports[autorizador]
		if !ok {
			if msg, faulted := res.Faults[autorizador]; faulted {
				writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": msg})
				return
			}
			http.Error(w, "unknown autorizador", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, reports)
	}
}

// HandleHealth reports process liveness
func HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": database.DB != nil})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}
