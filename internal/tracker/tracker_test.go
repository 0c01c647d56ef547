package tracker

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sstent/ftracker/internal/database"
	"github.com/sstent/ftracker/internal/metrics"
	"github.com/sstent/ftracker/internal/models"
	"github.com/sstent/ftracker/internal/training"
)

type memoryStore struct {
	reports []*database.Report
	err     error
}

func (m *memoryStore) CreateReport(r *database.Report) error {
	if m.err != nil {
		return m.err
	}
	r.ID = "report-" + r.Code
	m.reports = append(m.reports, r)
	return nil
}

func referencePackages() []models.SensorPackage {
	return []models.SensorPackage{
		{Code: "SWM", Data: []float64{720, 1, 80, 25, 40}},
		{Code: "RUN", Data: []float64{15000, 1, 75}},
		{Code: "WLK", Data: []float64{9000, 1, 75, 180}},
	}
}

func TestProcess(t *testing.T) {
	store := &memoryStore{}
	svc := NewService(store, metrics.New(prometheus.NewRegistry()), nil)

	recorded := time.Date(2024, 5, 1, 7, 0, 0, 0, time.UTC)
	report, err := svc.Process(context.Background(), models.SensorPackage{
		Code:       "RUN",
		Data:       []float64{15000, 1, 75},
		Source:     "week.yaml",
		RecordedAt: recorded,
	})
	require.NoError(t, err)

	assert.Equal(t, "report-RUN", report.ID)
	assert.Equal(t, "Running", report.TrainingType)
	assert.Equal(t, "week.yaml", report.Source)
	assert.Equal(t, recorded, report.RecordedAt)
	assert.InDelta(t, 9.75, report.Distance, 1e-9)
	assert.InDelta(t, 699.75, report.Calories, 1e-9)
	assert.True(t, strings.HasPrefix(report.Message, "Тип тренировки: Running\n"))
	require.Len(t, store.reports, 1)
}

func TestProcessErrors(t *testing.T) {
	svc := NewService(nil, metrics.New(prometheus.NewRegistry()), nil)
	ctx := context.Background()

	_, err := svc.Process(ctx, models.SensorPackage{Code: "XYZ", Data: []float64{1}})
	assert.ErrorIs(t, err, training.ErrUnsupportedType)

	_, err = svc.Process(ctx, models.SensorPackage{Code: "RUN", Data: []float64{1, 2}})
	assert.ErrorIs(t, err, training.ErrArityMismatch)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = svc.Process(cancelled, referencePackages()[0])
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessStorageFailureKeepsReport(t *testing.T) {
	store := &memoryStore{err: errors.New("disk full")}
	svc := NewService(store, nil, nil)

	report, err := svc.Process(context.Background(), referencePackages()[1])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to store report")
	require.NotNil(t, report)
	assert.Equal(t, "Running", report.TrainingType)
}

func TestWriteReports(t *testing.T) {
	svc := NewService(nil, nil, nil)

	var out bytes.Buffer
	failed, err := svc.WriteReports(context.Background(), &out, referencePackages())
	require.NoError(t, err)
	assert.Zero(t, failed)

	expected := "Тип тренировки: Swimming\n" +
		"Длительность: 1.000 ч\n" +
		"Дистанция: 0.468 км\n" +
		"Средняя скорость: 0.017 км/ч\n" +
		"Потрачено калорий: 4.467\n" +
		"--------------------------------------\n" +
		"Тип тренировки: Running\n" +
		"Длительность: 1.000 ч\n" +
		"Дистанция: 9.750 км\n" +
		"Средняя скорость: 9.750 км/ч\n" +
		"Потрачено калорий: 699.750\n" +
		"--------------------------------------\n" +
		"Тип тренировки: SportsWalking\n" +
		"Длительность: 1.000 ч\n" +
		"Дистанция: 5.850 км\n" +
		"Средняя скорость: 5.850 км/ч\n" +
		"Потрачено калорий: 157.500\n" +
		"--------------------------------------\n"
	assert.Equal(t, expected, out.String())
}

func TestWriteReportsSkipsBadPackages(t *testing.T) {
	svc := NewService(nil, nil, nil)

	packages := append([]models.SensorPackage{{Code: "BAD", Data: []float64{1}}}, referencePackages()...)
	packages = append(packages, models.SensorPackage{Code: "WLK", Data: []float64{1, 2}})

	var out bytes.Buffer
	failed, err := svc.WriteReports(context.Background(), &out, packages)
	require.NoError(t, err)
	assert.Equal(t, 2, failed)
	assert.Equal(t, 3, strings.Count(out.String(), "Тип тренировки:"))
}
