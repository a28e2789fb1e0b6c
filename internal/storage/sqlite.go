// Package storage provides SQLite-based persistence for battle reports.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/baseraid/internal/battle"
	"github.com/vovakirdan/baseraid/internal/session"
)

// Store manages the SQLite database connection for report persistence.
type Store struct {
	db *sql.DB
}

// ReportEntry is a single persisted battle report.
type ReportEntry struct {
	ID                 int64
	BattleID           string
	AttackerID         string
	LayoutID           string
	DestructionPercent int
	Stars              int
	Loot               battle.Resources
	DurationTicks      uint64
	EndReason          string
	CreatedAt          time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	// Open database
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	// Run migrations
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS battle_reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			battle_id TEXT NOT NULL UNIQUE,
			attacker_id TEXT NOT NULL,
			layout_id TEXT NOT NULL,
			destruction_percent INTEGER NOT NULL DEFAULT 0,
			stars INTEGER NOT NULL DEFAULT 0,
			loot_food INTEGER NOT NULL DEFAULT 0,
			loot_wood INTEGER NOT NULL DEFAULT 0,
			loot_gold INTEGER NOT NULL DEFAULT 0,
			duration_ticks INTEGER NOT NULL DEFAULT 0,
			end_reason TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_battle_reports_attacker ON battle_reports(attacker_id);
		CREATE INDEX IF NOT EXISTS idx_battle_reports_layout ON battle_reports(layout_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveReport records a finished battle.
// Returns the ID of the inserted record.
func (s *Store) SaveReport(entry ReportEntry) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO battle_reports
		 (battle_id, attacker_id, layout_id, destruction_percent, stars,
		  loot_food, loot_wood, loot_gold, duration_ticks, end_reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.BattleID,
		entry.AttackerID,
		entry.LayoutID,
		entry.DestructionPercent,
		entry.Stars,
		entry.Loot.Food,
		entry.Loot.Wood,
		entry.Loot.Gold,
		int64(entry.DurationTicks), //nolint:gosec // tick counts are far below int64 range
		entry.EndReason,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save report: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

const reportColumns = `id, battle_id, attacker_id, layout_id, destruction_percent, stars,
	loot_food, loot_wood, loot_gold, duration_ticks, end_reason, created_at`

// RecentReports retrieves the most recent battle reports.
func (s *Store) RecentReports(limit int) ([]ReportEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	return s.queryReports(
		`SELECT `+reportColumns+`
		 FROM battle_reports
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
}

// AttackerReports retrieves an attacker's battle history, newest first.
func (s *Store) AttackerReports(attackerID string, limit int) ([]ReportEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	return s.queryReports(
		`SELECT `+reportColumns+`
		 FROM battle_reports
		 WHERE attacker_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		attackerID, limit,
	)
}

// ReportByBattleID retrieves a report by its battle ID.
// Returns nil if no such battle was recorded.
func (s *Store) ReportByBattleID(battleID string) (*ReportEntry, error) {
	return s.queryOneReport(
		`SELECT `+reportColumns+`
		 FROM battle_reports
		 WHERE battle_id = ?`,
		battleID,
	)
}

// BestRaid retrieves the most destructive attack against a layout.
// Returns nil if the layout was never attacked.
func (s *Store) BestRaid(layoutID string) (*ReportEntry, error) {
	return s.queryOneReport(
		`SELECT `+reportColumns+`
		 FROM battle_reports
		 WHERE layout_id = ?
		 ORDER BY destruction_percent DESC, stars DESC, duration_ticks ASC
		 LIMIT 1`,
		layoutID,
	)
}

func (s *Store) queryReports(query string, args ...any) ([]ReportEntry, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query reports: %w", err)
	}
	defer rows.Close()

	var entries []ReportEntry
	for rows.Next() {
		entry, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

func (s *Store) queryOneReport(query string, args ...any) (*ReportEntry, error) {
	entry, err := scanReport(s.db.QueryRow(query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (ReportEntry, error) {
	var (
		entry     ReportEntry
		ticks     int64
		createdAt any
	)
	err := row.Scan(
		&entry.ID,
		&entry.BattleID,
		&entry.AttackerID,
		&entry.LayoutID,
		&entry.DestructionPercent,
		&entry.Stars,
		&entry.Loot.Food,
		&entry.Loot.Wood,
		&entry.Loot.Gold,
		&ticks,
		&entry.EndReason,
		&createdAt,
	)
	if err == sql.ErrNoRows {
		return ReportEntry{}, err
	}
	if err != nil {
		return ReportEntry{}, fmt.Errorf("storage: cannot scan row: %w", err)
	}

	entry.DurationTicks = uint64(ticks) //nolint:gosec // stored ticks are never negative
	entry.CreatedAt = parseCreatedAt(createdAt)
	return entry, nil
}

// parseCreatedAt handles the datetime column, which the driver may hand
// back as time.Time or string.
func parseCreatedAt(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// Save implements session.ReportSaver.
// This adapter allows sessions to save reports without a storage dependency.
func (s *Store) Save(report session.Report) error {
	entry := ReportEntry{
		BattleID:           string(report.BattleID),
		AttackerID:         report.AttackerID,
		LayoutID:           report.LayoutID,
		DestructionPercent: report.Result.DestructionPercent,
		Stars:              report.Result.Stars,
		Loot:               report.Result.Loot,
		DurationTicks:      report.Result.Ticks,
		EndReason:          report.Reason.String(),
	}
	_, err := s.SaveReport(entry)
	return err
}

// Ensure Store implements ReportSaver
var _ session.ReportSaver = (*Store)(nil)
