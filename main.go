// main.go - Entry point and dependency injection
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/sstent/ftracker/internal/config"
	"github.com/sstent/ftracker/internal/database"
	"github.com/sstent/ftracker/internal/metrics"
	"github.com/sstent/ftracker/internal/models"
	"github.com/sstent/ftracker/internal/parser"
	"github.com/sstent/ftracker/internal/sync"
	"github.com/sstent/ftracker/internal/tracker"
	"github.com/sstent/ftracker/internal/web"
)

// Sample readings printed by the demo command.
var demoPackages = []models.SensorPackage{
	{Code: "SWM", Data: []float64{720, 1, 80, 25, 40}, Source: "demo"},
	{Code: "RUN", Data: []float64{15000, 1, 75}, Source: "demo"},
	{Code: "WLK", Data: []float64{9000, 1, 75, 180}, Source: "demo"},
}

const usage = `Usage: ftracker [-env FILE] [command]

Commands:
  demo              print reports for the built-in sample packages (default)
  report FILE...    compute, print and store reports from YAML or FIT files
  serve             run the HTTP API and the scheduled inbox sync
`

type App struct {
	cfg         config.Config
	logger      *slog.Logger
	db          *database.SQLiteDB
	registry    *prometheus.Registry
	tracker     *tracker.Service
	syncService *sync.SyncService
	cron        *cron.Cron
	server      *http.Server
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("ftracker", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	envFile := fs.String("env", ".env", "env file to load before reading the environment")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(stderr, "ftracker: %v\n", err)
		return 1
	}
	logger := cfg.NewLogger(stderr)
	slog.SetDefault(logger)

	command, rest := "demo", fs.Args()
	if len(rest) > 0 {
		command, rest = rest[0], rest[1:]
	}

	switch command {
	case "demo":
		return runDemo(stdout, logger)
	case "report":
		if len(rest) == 0 {
			fmt.Fprintln(stderr, "ftracker: report needs at least one file")
			fs.Usage()
			return 2
		}
		return runReport(cfg, rest, stdout, logger)
	case "serve":
		return runServe(cfg, logger)
	default:
		fmt.Fprintf(stderr, "ftracker: unknown command %q\n", command)
		fs.Usage()
		return 2
	}
}

func runDemo(stdout io.Writer, logger *slog.Logger) int {
	svc := tracker.NewService(nil, nil, logger)

	failed, err := svc.WriteReports(context.Background(), stdout, demoPackages)
	if err != nil {
		logger.Error("demo failed", slog.Any("error", err))
		return 1
	}
	if failed > 0 {
		return 1
	}
	return 0
}

func runReport(cfg config.Config, files []string, stdout io.Writer, logger *slog.Logger) int {
	db, err := openDatabase(cfg)
	if err != nil {
		logger.Error("failed to open history", slog.Any("error", err))
		return 1
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := tracker.NewService(db, nil, logger)
	failed := 0
	for _, path := range files {
		p, err := parser.NewParser(path, cfg.Athlete)
		if err != nil {
			logger.Error("cannot read file", slog.String("file", path), slog.Any("error", err))
			failed++
			continue
		}

		packages, err := p.ParseFile(path)
		if err != nil {
			logger.Error("failed to parse file", slog.String("file", path), slog.Any("error", err))
			failed++
			continue
		}

		n, err := svc.WriteReports(ctx, stdout, packages)
		failed += n
		if err != nil {
			logger.Error("report interrupted", slog.Any("error", err))
			return 1
		}
	}

	if failed > 0 {
		logger.Warn("some packages failed", slog.Int("failed", failed))
		return 1
	}
	return 0
}

func runServe(cfg config.Config, logger *slog.Logger) int {
	app := &App{cfg: cfg, logger: logger}

	if err := app.init(); err != nil {
		logger.Error("failed to initialize app", slog.Any("error", err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.start(ctx); err != nil {
		logger.Error("server stopped with error", slog.Any("error", err))
		return 1
	}
	return 0
}

func (app *App) init() error {
	var err error

	// Initialize database
	app.db, err = openDatabase(app.cfg)
	if err != nil {
		return err
	}

	// Metrics and processing
	app.registry = prometheus.NewRegistry()
	recorder := metrics.New(app.registry)
	app.tracker = tracker.NewService(app.db, recorder, app.logger)
	app.syncService = sync.NewSyncService(app.tracker, app.db, app.cfg.InboxDir, app.cfg.Athlete, recorder, app.logger)

	// Setup cron scheduler
	cronLog := cronLogger{app.logger.With(slog.String("component", "cron"))}
	app.cron = cron.New(
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)

	// Setup HTTP server
	if app.cfg.LogLevel > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}
	webHandler := web.NewWebHandler(app.db, app.tracker, app.syncService, app.registry, app.logger)
	app.server = &http.Server{
		Addr:              app.cfg.HTTPAddress,
		Handler:           web.NewRouter(webHandler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return nil
}

// start runs the scheduler and the HTTP server until ctx is cancelled or the
// server fails, then shuts everything down.
func (app *App) start(ctx context.Context) error {
	_, err := app.cron.AddFunc(app.cfg.SyncSchedule, func() {
		app.logger.Info("starting scheduled sync")
		_, err := app.syncService.Sync(ctx)
		if errors.Is(err, sync.ErrSyncInProgress) {
			app.logger.Info("scheduled sync skipped", slog.Any("reason", err))
			return
		}
		if err != nil {
			app.logger.Error("sync failed", slog.Any("error", err))
		}
	})
	if err != nil {
		app.stop()
		return fmt.Errorf("invalid SYNC_SCHEDULE %q: %w", app.cfg.SyncSchedule, err)
	}
	app.cron.Start()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.logger.Info("server starting", slog.String("address", app.cfg.HTTPAddress))
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return app.stop()
	})

	return g.Wait()
}

func (app *App) stop() error {
	app.logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownTimeout)
	defer cancel()

	var errs []error

	// Stop cron and wait for a running sync
	select {
	case <-app.cron.Stop().Done():
	case <-ctx.Done():
		app.logger.Warn("scheduled sync still running at shutdown")
	}

	// Stop web server
	if err := app.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}

	// Close database
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database close: %w", err))
		}
	}

	app.logger.Info("shutdown complete")
	return errors.Join(errs...)
}

// openDatabase opens the report history, creating its directory first.
func openDatabase(cfg config.Config) (*database.SQLiteDB, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return database.NewSQLiteDB(cfg.DBPath)
}

// cronLogger routes scheduler logs through slog.
type cronLogger struct {
	*slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.Logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.Logger.Error(msg, append(keysAndValues, slog.Any("error", err))...)
}
