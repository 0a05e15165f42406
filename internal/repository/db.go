// Package repository provides data access implementations
package repository

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// DefaultDBPath is used when no database path is configured
const DefaultDBPath = "data/water-alert.db"

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS readings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		location TEXT NOT NULL,
		location_key TEXT NOT NULL,
		observed_at INTEGER NOT NULL,
		level REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_readings_location ON readings(location_key, observed_at);

	CREATE TABLE IF NOT EXISTS alert_log (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		location TEXT NOT NULL,
		location_key TEXT NOT NULL,
		observed_at INTEGER NOT NULL,
		observed_level REAL NOT NULL,
		status TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_alert_log_location ON alert_log(location_key);

	CREATE TABLE IF NOT EXISTS subscribers (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		name TEXT NOT NULL,
		contact_address TEXT NOT NULL,
		locations TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);`

// Open opens (creating if needed) the SQLite database at dbPath and makes
// sure every table exists
func Open(dbPath string, logger *zap.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dbPath == "" {
		dbPath = DefaultDBPath
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	logger.Info("Opening database", zap.String("path", dbPath))
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection keeps appends serialized and avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return db, nil
}
