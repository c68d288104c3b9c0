package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB represents the database connection with pooling
type DB struct {
	*sql.DB
	pool     *ConnectionPool
	prepared map[string]*sql.Stmt
	mutex    sync.RWMutex
}

// ConnectionPool manages database connection pooling
type ConnectionPool struct {
	db           *sql.DB
	maxOpenConns int
	maxIdleConns int
	maxLifetime  time.Duration
}

// NewConnectionPool creates a new database connection pool
func NewConnectionPool(db *sql.DB, maxOpen, maxIdle int, maxLifetime time.Duration) *ConnectionPool {
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(maxLifetime)

	return &ConnectionPool{
		db:           db,
		maxOpenConns: maxOpen,
		maxIdleConns: maxIdle,
		maxLifetime:  maxLifetime,
	}
}

// GetStats returns connection pool statistics
func (cp *ConnectionPool) GetStats() map[string]interface{} {
	stats := cp.db.Stats()

	return map[string]interface{}{
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"max_open_connections": cp.maxOpenConns,
		"max_idle_connections": cp.maxIdleConns,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}
}

// NewDB creates a new database connection with pooling and runs migrations
func NewDB(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "spotscore.db")
	connStr := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pool := NewConnectionPool(db, 25, 5, 5*time.Minute)

	database := &DB{
		DB:       db,
		pool:     pool,
		prepared: make(map[string]*sql.Stmt),
	}

	if err := database.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := database.initPreparedStatements(); err != nil {
		return nil, fmt.Errorf("failed to initialize prepared statements: %w", err)
	}

	slog.Info("Database initialized",
		"path", dbPath,
		"max_open_conns", pool.maxOpenConns,
		"max_idle_conns", pool.maxIdleConns)

	return database, nil
}

// migrate creates the necessary tables
func (db *DB) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS spots (
			id TEXT PRIMARY KEY,
			name TEXT,
			created_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS checkins (
			id TEXT PRIMARY KEY,
			spot_id TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			wifi_speed INTEGER,
			noise_level INTEGER,
			busyness INTEGER,
			laptop_friendly BOOLEAN,
			tags TEXT,
			price_level INTEGER,
			FOREIGN KEY (spot_id) REFERENCES spots(id)
		)`,

		`CREATE TABLE IF NOT EXISTS score_snapshots (
			spot_id TEXT PRIMARY KEY,
			score INTEGER NOT NULL,
			confidence REAL NOT NULL,
			stale BOOLEAN NOT NULL,
			breakdown TEXT NOT NULL,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (spot_id) REFERENCES spots(id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_checkins_spot_time ON checkins(spot_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_score ON score_snapshots(score DESC)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// initPreparedStatements prepares the hot-path queries
func (db *DB) initPreparedStatements() error {
	statements := map[string]string{
		"insert_checkin": `INSERT INTO checkins
			(id, spot_id, created_at, wifi_speed, noise_level, busyness, laptop_friendly, tags, price_level)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		"select_checkins": `SELECT id, spot_id, created_at, wifi_speed, noise_level, busyness, laptop_friendly, tags, price_level
			FROM checkins WHERE spot_id = ? AND created_at >= ? ORDER BY created_at DESC`,
	}

	db.mutex.Lock()
	defer db.mutex.Unlock()

	for name, query := range statements {
		stmt, err := db.Prepare(query)
		if err != nil {
			return fmt.Errorf("failed to prepare %s: %w", name, err)
		}
		db.prepared[name] = stmt
	}

	return nil
}

// stmt returns a prepared statement by name
func (db *DB) stmt(name string) *sql.Stmt {
	db.mutex.RLock()
	defer db.mutex.RUnlock()
	return db.prepared[name]
}

// PoolStats exposes connection pool statistics
func (db *DB) PoolStats() map[string]interface{} {
	return db.pool.GetStats()
}
