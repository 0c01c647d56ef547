// Package tracker turns sensor packages into stored workout reports.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/sstent/ftracker/internal/database"
	"github.com/sstent/ftracker/internal/metrics"
	"github.com/sstent/ftracker/internal/models"
	"github.com/sstent/ftracker/internal/training"
)

// Store persists computed reports. A nil Store disables persistence.
type Store interface {
	CreateReport(report *database.Report) error
}

type Service struct {
	store   Store
	metrics *metrics.Recorder
	logger  *slog.Logger
}

func NewService(store Store, recorder *metrics.Recorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:   store,
		metrics: recorder,
		logger:  logger.With(slog.String("component", "tracker")),
	}
}

// Process computes the report for pkg and stores it. When only storing
// fails, the computed report is returned together with the error.
func (s *Service) Process(ctx context.Context, pkg models.SensorPackage) (*database.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	workout, err := training.ReadPackage(pkg.Code, pkg.Data)
	if err != nil {
		s.metrics.RecordError(failureReason(err))
		return nil, err
	}

	info := training.ShowTrainingInfo(workout)
	report := &database.Report{
		Source:       pkg.Source,
		Code:         pkg.Code,
		TrainingType: info.TrainingType,
		Duration:     info.Duration,
		Distance:     info.Distance,
		Speed:        info.Speed,
		Calories:     info.Calories,
		Message:      info.Message(),
		RecordedAt:   pkg.RecordedAt,
	}

	if s.store != nil {
		if err := s.store.CreateReport(report); err != nil {
			s.metrics.RecordError(metrics.ReasonStorage)
			return report, fmt.Errorf("failed to store report: %w", err)
		}
	}

	s.metrics.RecordReport(info.TrainingType)
	s.logger.Debug("report produced",
		slog.String("id", report.ID),
		slog.String("training_type", report.TrainingType),
		slog.String("source", report.Source),
	)
	return report, nil
}

// WriteReports processes packages in order and prints every computed
// message to w. Failing packages are logged and skipped; the number of
// failures is returned.
func (s *Service) WriteReports(ctx context.Context, w io.Writer, packages []models.SensorPackage) (int, error) {
	failed := 0
	for i, pkg := range packages {
		if err := ctx.Err(); err != nil {
			return failed, err
		}

		report, err := s.Process(ctx, pkg)
		if report != nil {
			if _, werr := fmt.Fprintln(w, report.Message); werr != nil {
				return failed, werr
			}
		}
		if err != nil {
			failed++
			s.logger.Error("package failed",
				slog.Int("index", i),
				slog.String("type", pkg.Code),
				slog.String("source", pkg.Source),
				slog.Any("error", err),
			)
		}
	}
	return failed, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, training.ErrUnsupportedType):
		return metrics.ReasonUnsupportedType
	case errors.Is(err, training.ErrArityMismatch):
		return metrics.ReasonArityMismatch
	default:
		return metrics.ReasonOther
	}
}
