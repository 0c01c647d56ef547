package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sstent/ftracker/internal/database"
	"github.com/sstent/ftracker/internal/models"
	"github.com/sstent/ftracker/internal/sync"
	"github.com/sstent/ftracker/internal/tracker"
	"github.com/sstent/ftracker/internal/training"
)

const defaultLimit = 50

// ReportStore is the read side of the report history.
type ReportStore interface {
	GetReport(id string) (*database.Report, error)
	FilterReports(filters database.ReportFilters) ([]database.Report, error)
	GetStats() (*database.Stats, error)
}

type Syncer interface {
	Sync(ctx context.Context) (*sync.SyncResult, error)
}

type WebHandler struct {
	db       ReportStore
	tracker  *tracker.Service
	syncer   Syncer
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

func NewWebHandler(db ReportStore, t *tracker.Service, syncer Syncer, gatherer prometheus.Gatherer, logger *slog.Logger) *WebHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebHandler{
		db:       db,
		tracker:  t,
		syncer:   syncer,
		gatherer: gatherer,
		logger:   logger.With(slog.String("component", "web")),
	}
}

// NewRouter returns a gin engine with recovery, request logging and all
// routes registered.
func NewRouter(h *WebHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger())
	h.RegisterRoutes(router)
	return router
}

func (h *WebHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.Health)
	router.POST("/reports", h.CreateReport)
	router.GET("/reports", h.ReportList)
	router.GET("/reports/:id", h.ReportDetail)
	router.GET("/stats", h.Stats)
	router.POST("/sync", h.Sync)
	if h.gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	}
}

func (h *WebHandler) Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

func (h *WebHandler) CreateReport(c *gin.Context) {
	var pkg models.SensorPackage
	if err := c.ShouldBindJSON(&pkg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed package: " + err.Error()})
		return
	}
	if pkg.Source == "" {
		pkg.Source = "api"
	}

	report, err := h.tracker.Process(c.Request.Context(), pkg)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, report)
}

func (h *WebHandler) ReportList(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	if limit <= 0 {
		limit = defaultLimit
	}

	reports, err := h.db.FilterReports(database.ReportFilters{
		TrainingType: c.Query("type"),
		Source:       c.Query("source"),
		SortBy:       c.Query("sort"),
		SortOrder:    c.Query("order"),
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		h.logger.Error("list reports", slog.Any("error", err))
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, reports)
}

func (h *WebHandler) ReportDetail(c *gin.Context) {
	report, err := h.db.GetReport(c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("get report", slog.Any("error", err))
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *WebHandler) Stats(c *gin.Context) {
	stats, err := h.db.GetStats()
	if err != nil {
		h.logger.Error("stats", slog.Any("error", err))
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *WebHandler) Sync(c *gin.Context) {
	if h.syncer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sync is not configured"})
		return
	}

	result, err := h.syncer.Sync(c.Request.Context())
	if errors.Is(err, sync.ErrSyncInProgress) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.logger.Error("sync", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *WebHandler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.logger.Info("request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("took", time.Since(start)),
		)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, training.ErrUnsupportedType), errors.Is(err, training.ErrArityMismatch):
		return http.StatusBadRequest
	case errors.Is(err, database.ErrNonFiniteMetrics):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
