package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// DefaultTrackedFields is the fixed allow-list of status columns followed per
// autorizador. Keys are the normalized portal column headers.
var DefaultTrackedFields = []string{
	"status_servico4",
	"autorizacao4",
	"retorno_autorizacao4",
	"inutilizacao4",
	"consulta_protocolo4",
	"consulta_cadastro",
	"recepcao_evento4",
}

// Config holds all application configuration
type Config struct {
	// Scrape target
	URL          string
	FetchTimeout time.Duration

	// Storage
	DBPath           string
	RetentionMaxDays int

	// Reporting
	Timezone      string
	Location      *time.Location
	TrackedFields []string
	SLAField      string
	JSONPath      string

	// Engine
	Workers int

	// Server / scheduler
	Port            string
	EnableScheduler bool
	PollInterval    time.Duration

	// Admin auth
	AdminUser string
	AdminHash []byte
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		URL:              getenv("NFE_URL", "https://www.nfe.fazenda.gov.br/portal/disponibilidade.aspx"),
		FetchTimeout:     envDurSecs("NFE_FETCH_TIMEOUT_SECS", 30),
		DBPath:           getenv("NFE_DB_PATH", "./disponibilidade.db"),
		RetentionMaxDays: envInt("NFE_RETENTION_MAX_DAYS", 30),
		Timezone:         getenv("NFE_TIMEZONE", "America/Sao_Paulo"),
		SLAField:         getenv("NFE_SLA_FIELD", "status_servico4"),
		JSONPath:         getenv("NFE_JSON_PATH", "./disponibilidade.json"),
		Workers:          envInt("NFE_WORKERS", 4),
		Port:             getenv("PORT", "4556"),
		EnableScheduler:  envBool("ENABLE_SCHEDULER", true),
		PollInterval:     envDurSecs("NFE_POLL_SECONDS", 300),
		AdminUser:        getenv("ADMIN_USER", "admin"),
	}

	if fields := getenv("NFE_TRACKED_FIELDS", ""); fields != "" {
		cfg.TrackedFields = splitFields(fields)
	} else {
		cfg.TrackedFields = DefaultTrackedFields
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	cfg.Location = loc

	// Load admin password/hash. The API stays read-only without one.
	if hp := getenv("ADMIN_PASSWORD_BCRYPT", ""); hp != "" {
		cfg.AdminHash = []byte(hp)
	} else if pw := getenv("ADMIN_PASSWORD", ""); pw != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		cfg.AdminHash = h
	} else {
		log.Println("No ADMIN_PASSWORD or ADMIN_PASSWORD_BCRYPT set; admin endpoints disabled")
	}

	return cfg, nil
}

func splitFields(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Helper functions
func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(k string, def bool) bool {
	v := strings.ToLower(getenv(k, ""))
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "yes"
}

func envDurSecs(k string, def int) time.Duration {
	return time.Duration(envInt(k, def)) * time.Second
}
