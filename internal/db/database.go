package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"congestion-pulse/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

// Database wraps the SQLite connection holding the station catalog and the
// refresh snapshot archive.
type Database struct {
	conn *sql.DB
}

// New creates a new database connection
func New(dbPath string) (*Database, error) {
	// Enable WAL mode and other optimizations via connection string
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000", dbPath)

	conn, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single writer
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(time.Hour)

	db := &Database{conn: conn}

	if err := db.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return db, nil
}

// initialize creates tables and indexes
func (db *Database) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS stations (
		name TEXT PRIMARY KEY,
		latitude REAL NOT NULL,
		longitude REAL NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		requested_time TEXT NOT NULL,
		requested_day TEXT NOT NULL,
		source TEXT NOT NULL,
		record_count INTEGER NOT NULL,
		reason TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_source ON snapshots(source);
	CREATE INDEX IF NOT EXISTS idx_snapshots_created ON snapshots(created_at);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// Close closes the database connection
func (db *Database) Close() error {
	return db.conn.Close()
}

// UpsertStationBatch inserts or replaces stations in one transaction,
// returning how many were written.
func (db *Database) UpsertStationBatch(stations []models.Station) (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO stations (name, latitude, longitude) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	var count int64
	for _, s := range stations {
		if _, err := stmt.Exec(s.Name, s.Latitude, s.Longitude); err != nil {
			return count, err
		}
		count++
	}

	return count, tx.Commit()
}

// GetStation retrieves a station by name
func (db *Database) GetStation(name string) (*models.Station, error) {
	query := `SELECT name, latitude, longitude, created_at FROM stations WHERE name = ?`

	var s models.Station
	err := db.conn.QueryRow(query, name).Scan(&s.Name, &s.Latitude, &s.Longitude, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListStations returns the full catalog ordered by name
func (db *Database) ListStations() ([]models.Station, error) {
	query := `SELECT name, latitude, longitude, created_at FROM stations ORDER BY name`

	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stations []models.Station
	for rows.Next() {
		var s models.Station
		if err := rows.Scan(&s.Name, &s.Latitude, &s.Longitude, &s.CreatedAt); err != nil {
			return nil, err
		}
		stations = append(stations, s)
	}
	return stations, rows.Err()
}

// RecordSnapshot archives one executed refresh
func (db *Database) RecordSnapshot(s *models.Snapshot) error {
	query := `INSERT INTO snapshots (requested_time, requested_day, source, record_count, reason) VALUES (?, ?, ?, ?, ?)`
	result, err := db.conn.Exec(query, s.RequestedTime, s.RequestedDay, s.Source, s.RecordCount, s.Reason)
	if err != nil {
		return err
	}

	id, _ := result.LastInsertId()
	s.ID = id
	return nil
}

// QuerySnapshots retrieves archived refreshes, newest first
func (db *Database) QuerySnapshots(q models.SnapshotQuery) ([]models.Snapshot, error) {
	var conditions []string
	var args []interface{}

	baseQuery := `SELECT id, requested_time, requested_day, source, record_count, reason, created_at FROM snapshots`

	if q.Source != "" {
		conditions = append(conditions, "source = ?")
		args = append(args, q.Source)
	}
	if !q.Since.IsZero() {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, q.Since)
	}

	if len(conditions) > 0 {
		baseQuery += " WHERE " + strings.Join(conditions, " AND ")
	}

	baseQuery += " ORDER BY created_at DESC"

	if q.Limit > 0 {
		baseQuery += fmt.Sprintf(" LIMIT %d", q.Limit)
	}

	rows, err := db.conn.Query(baseQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.Snapshot
	for rows.Next() {
		var s models.Snapshot
		var reason sql.NullString

		err := rows.Scan(&s.ID, &s.RequestedTime, &s.RequestedDay, &s.Source, &s.RecordCount, &reason, &s.CreatedAt)
		if err != nil {
			return nil, err
		}
		if reason.Valid {
			s.Reason = reason.String
		}
		results = append(results, s)
	}

	return results, rows.Err()
}

// GetStats returns database statistics
func (db *Database) GetStats() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var stationCount int64
	db.conn.QueryRow("SELECT COUNT(*) FROM stations").Scan(&stationCount)
	stats["stations"] = stationCount

	var snapshotCount int64
	db.conn.QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&snapshotCount)
	stats["snapshots"] = snapshotCount

	var fallbackCount int64
	db.conn.QueryRow("SELECT COUNT(*) FROM snapshots WHERE source = 'fallback'").Scan(&fallbackCount)
	stats["fallback_snapshots"] = fallbackCount

	var lastRefresh sql.NullString
	db.conn.QueryRow("SELECT MAX(created_at) FROM snapshots").Scan(&lastRefresh)
	if lastRefresh.Valid {
		stats["last_refresh"] = lastRefresh.String
	}

	return stats, nil
}
