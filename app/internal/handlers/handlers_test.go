package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"nfestatus/app/internal/auth"
	"nfestatus/app/internal/cache"
	"nfestatus/app/internal/database"
	"nfestatus/app/internal/models"
	"nfestatus/app/internal/timeline"
)

func setupMux(t *testing.T) *http.ServeMux {
	t.Helper()
	if err := database.Init(":memory:"); err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	cache.ReportCache.Flush()

	seedHistory(t)

	srv := &Server{
		Engine:  timeline.New(time.UTC, []string{"status_servico4"}, "status_servico4"),
		Store:   database.NewStore(),
		Workers: 2,
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	return SetupRoutes(srv, auth.NewAdmin("admin", hash), 30)
}

func seedHistory(t *testing.T) {
	t.Helper()
	for _, st := range []struct{ ts, status string }{
		{"2024-01-15T08:00:00Z", "verde"},
		{"2024-01-15T14:00:00Z", "amarelo"},
	} {
		checkedAt, _ := time.Parse(time.RFC3339, st.ts)
		_, err := database.PersistSnapshot(models.Snapshot{
			CheckedAt: checkedAt,
			Statuses: []map[string]any{
				{"autorizador": "SVAN", "status_servico4": st.status},
			},
		})
		if err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}
}

// --------------- Public API ---------------

func TestHandleSLA(t *testing.T) {
	mux := setupMux(t)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sla", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var rows []models.DailySLA
	if err := json.Unmarshal(w.Body.Bytes(), &rows); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if len(rows) == 0 {
		t.Fatal("expected SLA rows")
	}
	if rows[0].Autorizador != "SVAN" {
		t.Errorf("autorizador = %s", rows[0].Autorizador)
	}
}

func TestHandleSLA_FilterNoMatch(t *testing.T) {
	mux := setupMux(t)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sla?autorizador=NOPE", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var rows []models.DailySLA
	if err := json.Unmarshal(w.Body.Bytes(), &rows); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected empty result, got %d rows", len(rows))
	}
}

func TestHandleReports(t *testing.T) {
	mux := setupMux(t)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/reports/SVAN", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var reports []models.DayReport
	if err := json.Unmarshal(w.Body.Bytes(), &reports); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if len(reports) == 0 {
		t.Fatal("expected day reports")
	}
	if reports[0].Dia != "2024-01-15" {
		t.Errorf("first dia = %s", reports[0].Dia)
	}
	if len(reports[0].Transitions["status_servico4"]) == 0 {
		t.Error("expected transitions for status_servico4")
	}
}

func TestHandleReports_Unknown(t *testing.T) {
	mux := setupMux(t)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/reports/NOPE", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	mux := setupMux(t)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}

// --------------- Admin API ---------------

func TestAdminRecompute_RequiresAuth(t *testing.T) {
	mux := setupMux(t)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/admin/recompute", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAdminRecompute_Authorized(t *testing.T) {
	mux := setupMux(t)

	r := httptest.NewRequest(http.MethodPost, "/api/admin/recompute", nil)
	r.SetBasicAuth("admin", "secret")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if out["run_id"] == "" {
		t.Error("expected run_id in response")
	}
}

func TestAdminRetention_Authorized(t *testing.T) {
	mux := setupMux(t)

	r := httptest.NewRequest(http.MethodPost, "/api/admin/retention", nil)
	r.SetBasicAuth("admin", "secret")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}
