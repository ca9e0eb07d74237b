package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"nfestatus/app/internal/auth"
	"nfestatus/app/internal/cache"
	"nfestatus/app/internal/config"
	"nfestatus/app/internal/database"
	"nfestatus/app/internal/export"
	"nfestatus/app/internal/handlers"
	"nfestatus/app/internal/scraper"
	"nfestatus/app/internal/timeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := database.Init(cfg.DBPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	engine := timeline.New(cfg.Location, cfg.TrackedFields, cfg.SLAField)
	srv := &handlers.Server{
		Engine:  engine,
		Store:   database.NewStore(),
		Workers: cfg.Workers,
	}

	if cfg.EnableScheduler {
		go runScheduler(cfg, engine)
		log.Printf("Scheduler started with %v interval", cfg.PollInterval)
	}

	adminAuth := auth.NewAdmin(cfg.AdminUser, cfg.AdminHash)
	mux := handlers.SetupRoutes(srv, adminAuth, cfg.RetentionMaxDays)

	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := httpSrv.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// runScheduler periodically scrapes the portal, persists the snapshot with
// SCD2 history, applies retention, recomputes the timeline and exports the
// JSON report. One failing cycle never stops the loop.
func runScheduler(cfg *config.Config, engine *timeline.Engine) {
	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	// First cycle immediately; the ticker handles the rest.
	runCycle(cfg, engine)
	for range ticker.C {
		runCycle(cfg, engine)
	}
}

func runCycle(cfg *config.Config, engine *timeline.Engine) {
	html, err := scraper.Fetch(cfg.URL, cfg.FetchTimeout)
	if err != nil {
		log.Printf("Scrape failed: %v", err)
		_ = database.InsertLog(database.LogLevelError, database.LogCategoryScrape, "", "Scrape failed", err.Error())
		return
	}

	snap, err := scraper.Parse(html, cfg.Location)
	if err != nil {
		log.Printf("Parse failed: %v", err)
		_ = database.InsertLog(database.LogLevelError, database.LogCategoryScrape, "", "Parse failed", err.Error())
		return
	}

	inserted, err := database.PersistSnapshot(snap)
	if err != nil {
		log.Printf("Persist failed: %v", err)
		_ = database.InsertLog(database.LogLevelError, database.LogCategorySystem, "", "Persist failed", err.Error())
		return
	}
	log.Printf("Snapshot persisted: %d status rows, %d new records", len(snap.Statuses), inserted)

	if removed, err := database.ApplyRetention(cfg.RetentionMaxDays); err != nil {
		log.Printf("Retention failed: %v", err)
	} else if removed > 0 {
		log.Printf("Retention removed %d closed records older than %d days", removed, cfg.RetentionMaxDays)
	}

	if inserted > 0 {
		cache.ReportCache.Flush()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	res, err := engine.Run(ctx, database.NewStore(), cfg.Workers)
	if err != nil {
		log.Printf("Engine pass failed: %v", err)
		_ = database.InsertLog(database.LogLevelError, database.LogCategoryEngine, "", "Engine pass failed", err.Error())
		return
	}
	for autorizador, msg := range res.Faults {
		log.Printf("Entity fault %s: %s", autorizador, msg)
		_ = database.InsertLog(database.LogLevelWarn, database.LogCategoryEngine, autorizador, "Entity fault", msg)
	}

	if err := export.WriteJSON(cfg.JSONPath, res); err != nil {
		log.Printf("Export failed: %v", err)
		_ = database.InsertLog(database.LogLevelError, database.LogCategoryExport, "", "Export failed", err.Error())
		return
	}
	_ = database.InsertLog(database.LogLevelInfo, database.LogCategorySchedule, "",
		"Cycle complete", fmt.Sprintf("run_id=%s entities=%d faults=%d", res.RunID, len(res.Reports), len(res.Faults)))
	_ = database.PruneLogs(10000)
}
