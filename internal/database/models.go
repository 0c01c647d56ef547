// internal/database/models.go
package database

import (
	"time"
)

type Report struct {
	ID           string    `json:"id"`
	Source       string    `json:"source"`
	Code         string    `json:"code"`
	TrainingType string    `json:"training_type"`
	Duration     float64   `json:"duration"` // hours
	Distance     float64   `json:"distance"` // km
	Speed        float64   `json:"speed"`    // km/h
	Calories     float64   `json:"calories"`
	Message      string    `json:"message"`
	RecordedAt   time.Time `json:"recorded_at"`
	CreatedAt    time.Time `json:"created_at"`
}

type TypeStats struct {
	TrainingType  string  `json:"training_type"`
	Count         int     `json:"count"`
	TotalDuration float64 `json:"total_duration"`
	TotalDistance float64 `json:"total_distance"`
	TotalCalories float64 `json:"total_calories"`
}

type Stats struct {
	Total  int         `json:"total"`
	ByType []TypeStats `json:"by_type"`
}

// Database interface
type Database interface {
	// Reports
	CreateReport(report *Report) error
	GetReport(id string) (*Report, error)
	GetReports(limit, offset int) ([]Report, error)
	FilterReports(filters ReportFilters) ([]Report, error)

	// Stats
	GetStats() (*Stats, error)

	// Inbox bookkeeping
	FileImported(filename string) (bool, error)
	MarkFileImported(filename string, packages int) error

	// Close connection
	Close() error
}

type ReportFilters struct {
	TrainingType string
	Source       string
	DateFrom     *time.Time
	DateTo       *time.Time
	MinDistance  float64
	MaxDistance  float64
	Limit        int
	Offset       int
	SortBy       string
	SortOrder    string
}
