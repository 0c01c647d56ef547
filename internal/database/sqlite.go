// internal/database/sqlite.go
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Fixed-width UTC timestamps keep text ordering chronological.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var (
	ErrNotFound          = errors.New("report not found")
	ErrNonFiniteMetrics  = errors.New("report has non-finite metrics")
	sortableReportFields = map[string]string{
		"created_at":  "created_at",
		"recorded_at": "recorded_at",
		"distance":    "distance",
		"calories":    "calories",
		"duration":    "duration",
	}
)

var _ Database = (*SQLiteDB)(nil)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(dbPath string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	sqlite := &SQLiteDB{db: db}

	if err := sqlite.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sqlite, nil
}

func (s *SQLiteDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL DEFAULT '',
		code TEXT NOT NULL,
		training_type TEXT NOT NULL,
		duration REAL NOT NULL,
		distance REAL NOT NULL,
		speed REAL NOT NULL,
		calories REAL NOT NULL,
		message TEXT NOT NULL,
		recorded_at TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_training_type ON reports(training_type);
	CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at);
	CREATE INDEX IF NOT EXISTS idx_reports_source ON reports(source);

	CREATE TABLE IF NOT EXISTS imported_files (
		filename TEXT PRIMARY KEY,
		packages INTEGER NOT NULL DEFAULT 0,
		imported_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

const reportColumns = `id, source, code, training_type, duration, distance,
	speed, calories, message, recorded_at, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*Report, error) {
	var r Report
	var recordedAt, createdAt string

	err := row.Scan(
		&r.ID, &r.Source, &r.Code, &r.TrainingType,
		&r.Duration, &r.Distance, &r.Speed, &r.Calories,
		&r.Message, &recordedAt, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	if recordedAt != "" {
		if r.RecordedAt, err = time.Parse(timeLayout, recordedAt); err != nil {
			return nil, err
		}
	}
	if r.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, err
	}

	return &r, nil
}

func scanReports(rows *sql.Rows) ([]Report, error) {
	defer rows.Close()

	reports := []Report{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *r)
	}

	return reports, rows.Err()
}

// CreateReport stores report, assigning ID and CreatedAt when unset.
func (s *SQLiteDB) CreateReport(report *Report) error {
	for _, v := range []float64{report.Duration, report.Distance, report.Speed, report.Calories} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrNonFiniteMetrics
		}
	}

	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}

	recordedAt := ""
	if !report.RecordedAt.IsZero() {
		recordedAt = report.RecordedAt.UTC().Format(timeLayout)
	}

	query := `
	INSERT INTO reports (` + reportColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.Exec(query,
		report.ID, report.Source, report.Code, report.TrainingType,
		report.Duration, report.Distance, report.Speed, report.Calories,
		report.Message, recordedAt, report.CreatedAt.UTC().Format(timeLayout),
	)

	return err
}

func (s *SQLiteDB) GetReport(id string) (*Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = ?`

	r, err := scanReport(s.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return r, nil
}

func (s *SQLiteDB) GetReports(limit, offset int) ([]Report, error) {
	query := `
	SELECT ` + reportColumns + `
	FROM reports
	ORDER BY created_at DESC
	LIMIT ? OFFSET ?`

	rows, err := s.db.Query(query, limit, offset)
	if err != nil {
		return nil, err
	}

	return scanReports(rows)
}

func (s *SQLiteDB) FilterReports(filters ReportFilters) ([]Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE 1=1`

	var args []any
	var conditions []string

	// Build WHERE conditions
	if filters.TrainingType != "" {
		conditions = append(conditions, "training_type = ?")
		args = append(args, filters.TrainingType)
	}

	if filters.Source != "" {
		conditions = append(conditions, "source = ?")
		args = append(args, filters.Source)
	}

	if filters.DateFrom != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, filters.DateFrom.UTC().Format(timeLayout))
	}

	if filters.DateTo != nil {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, filters.DateTo.UTC().Format(timeLayout))
	}

	if filters.MinDistance > 0 {
		conditions = append(conditions, "distance >= ?")
		args = append(args, filters.MinDistance)
	}

	if filters.MaxDistance > 0 {
		conditions = append(conditions, "distance <= ?")
		args = append(args, filters.MaxDistance)
	}

	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}

	orderBy := "created_at"
	if column, ok := sortableReportFields[filters.SortBy]; ok {
		orderBy = column
	}

	order := "DESC"
	if strings.EqualFold(filters.SortOrder, "asc") {
		order = "ASC"
	}

	query += fmt.Sprintf(" ORDER BY %s %s", orderBy, order)

	// SQLite only accepts OFFSET after LIMIT; -1 means no limit.
	limit := -1
	if filters.Limit > 0 {
		limit = filters.Limit
	}
	if filters.Limit > 0 || filters.Offset > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, max(filters.Offset, 0))
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}

	return scanReports(rows)
}

func (s *SQLiteDB) GetStats() (*Stats, error) {
	stats := &Stats{ByType: []TypeStats{}}

	query := `
	SELECT training_type, COUNT(*), SUM(duration), SUM(distance), SUM(calories)
	FROM reports
	GROUP BY training_type
	ORDER BY training_type`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var ts TypeStats
		if err := rows.Scan(&ts.TrainingType, &ts.Count, &ts.TotalDuration, &ts.TotalDistance, &ts.TotalCalories); err != nil {
			return nil, err
		}
		stats.Total += ts.Count
		stats.ByType = append(stats.ByType, ts)
	}

	return stats, rows.Err()
}

func (s *SQLiteDB) FileImported(filename string) (bool, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM imported_files WHERE filename = ?`, filename).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *SQLiteDB) MarkFileImported(filename string, packages int) error {
	query := `
	INSERT INTO imported_files (filename, packages, imported_at) VALUES (?, ?, ?)
	ON CONFLICT(filename) DO UPDATE SET packages = excluded.packages, imported_at = excluded.imported_at`

	_, err := s.db.Exec(query, filename, packages, time.Now().UTC().Format(timeLayout))
	return err
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}
