package database

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

// DB is the global database instance
var DB *sql.DB

// Init initializes the database connection and creates schema
func Init(dbPath string) error {
	var err error
	DB, err = sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}

	return EnsureSchema()
}

// EnsureSchema creates all necessary database tables
func EnsureSchema() error {
	_, err := DB.Exec(`
CREATE TABLE IF NOT EXISTS disponibilidade (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  autorizador TEXT NOT NULL,
  status_json TEXT NOT NULL,
  valid_from TEXT NOT NULL,
  valid_to TEXT,
  is_current INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS idx_disponibilidade_autorizador ON disponibilidade(autorizador);
CREATE INDEX IF NOT EXISTS idx_disponibilidade_valid_from ON disponibilidade(valid_from);
CREATE INDEX IF NOT EXISTS idx_disponibilidade_current ON disponibilidade(autorizador, is_current);

CREATE TABLE IF NOT EXISTS system_logs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  timestamp TEXT NOT NULL,
  level TEXT NOT NULL,
  category TEXT NOT NULL,
  service TEXT,
  message TEXT NOT NULL,
  details TEXT
);
CREATE INDEX IF NOT EXISTS idx_system_logs_ts ON system_logs(timestamp);
`)
	return err
}
