package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	gosync "sync"
	"time"

	"github.com/sstent/ftracker/internal/metrics"
	"github.com/sstent/ftracker/internal/models"
	"github.com/sstent/ftracker/internal/parser"
	"github.com/sstent/ftracker/internal/tracker"
)

// ErrSyncInProgress is returned when another Sync call is still running.
var ErrSyncInProgress = errors.New("sync already in progress")

// ImportLog remembers which inbox files were already processed.
type ImportLog interface {
	FileImported(filename string) (bool, error)
	MarkFileImported(filename string, packages int) error
}

type SyncResult struct {
	Files    int `json:"files"`
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
	Reports  int `json:"reports"`
}

type SyncService struct {
	running gosync.Mutex

	tracker  *tracker.Service
	imports  ImportLog
	inboxDir string
	athlete  models.Athlete
	metrics  *metrics.Recorder
	logger   *slog.Logger
}

func NewSyncService(t *tracker.Service, imports ImportLog, inboxDir string, athlete models.Athlete, recorder *metrics.Recorder, logger *slog.Logger) *SyncService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncService{
		tracker:  t,
		imports:  imports,
		inboxDir: inboxDir,
		athlete:  athlete,
		metrics:  recorder,
		logger:   logger.With(slog.String("component", "sync")),
	}
}

// Sync imports every inbox file not seen before. Per-file and per-package
// failures are logged and counted; only listing the inbox or context
// cancellation abort the run. Cancellation is checked between files: a file
// that was started is always finished and recorded. Only one Sync runs at a
// time; overlapping calls get ErrSyncInProgress.
func (s *SyncService) Sync(ctx context.Context) (*SyncResult, error) {
	if !s.running.TryLock() {
		return nil, ErrSyncInProgress
	}
	defer s.running.Unlock()

	startTime := time.Now()
	s.logger.Info("starting sync", slog.String("inbox", s.inboxDir))

	files, err := s.inboxFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to list inbox: %w", err)
	}

	result := &SyncResult{Files: len(files)}
	for i, name := range files {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		done, err := s.imports.FileImported(name)
		if err != nil {
			return result, fmt.Errorf("failed to check import log: %w", err)
		}
		if done {
			result.Skipped++
			continue
		}

		s.logger.Info("processing file",
			slog.Int("n", i+1),
			slog.Int("of", len(files)),
			slog.String("file", name),
		)
		created, err := s.syncFile(context.WithoutCancel(ctx), name)
		result.Reports += created
		if err != nil {
			result.Failed++
			s.logger.Error("file failed", slog.String("file", name), slog.Any("error", err))
			continue
		}
		result.Imported++
	}

	s.metrics.RecordSync(time.Now())
	s.logger.Info("sync completed",
		slog.Duration("took", time.Since(startTime)),
		slog.Int("imported", result.Imported),
		slog.Int("skipped", result.Skipped),
		slog.Int("failed", result.Failed),
		slog.Int("reports", result.Reports),
	)
	return result, nil
}

func (s *SyncService) syncFile(ctx context.Context, name string) (int, error) {
	path := filepath.Join(s.inboxDir, name)

	p, err := parser.NewParser(path, s.athlete)
	if err != nil {
		return 0, err
	}

	packages, err := p.ParseFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", name, err)
	}

	created := 0
	for i, pkg := range packages {
		if _, err := s.tracker.Process(ctx, pkg); err != nil {
			s.logger.Warn("package skipped",
				slog.String("file", name),
				slog.Int("index", i),
				slog.Any("error", err),
			)
			continue
		}
		created++
	}

	// A file counts as imported once every package was attempted.
	if err := s.imports.MarkFileImported(name, len(packages)); err != nil {
		return created, fmt.Errorf("failed to record import: %w", err)
	}
	return created, nil
}

func (s *SyncService) inboxFiles() ([]string, error) {
	entries, err := os.ReadDir(s.inboxDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !parser.Supported(e.Name()) {
			continue
		}
		files = append(files, e.Name())
	}
	return files, nil
}
