package handlers

import (
	"net/http"

	"nfestatus/app/internal/auth"
)

// SetupRoutes wires the API surface. Read endpoints are public; mutating
// admin endpoints sit behind basic auth.
func SetupRoutes(s *Server, admin *auth.Admin, retentionMaxDays int) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", HandleHealth())
	mux.HandleFunc("GET /api/sla", HandleSLA(s))
	mux.HandleFunc("GET /api/reports/{autorizador}", HandleReports(s))

	mux.HandleFunc("POST /api/admin/recompute", admin.Middleware(HandleRecompute(s)))
	mux.HandleFunc("POST /api/admin/retention", admin.Middleware(HandleRetention(retentionMaxDays)))
	mux.HandleFunc("GET /api/admin/logs", admin.Middleware(HandleLogs()))

	return mux
}
