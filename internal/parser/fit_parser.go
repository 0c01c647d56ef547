package parser

import (
	"bytes"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/tormoder/fit"

	"github.com/sstent/ftracker/internal/models"
	"github.com/sstent/ftracker/internal/training"
)

const (
	secondsInHour  = 3600
	stepsPerStride = 2
	invalidUint16  = 0xFFFF
	invalidUint32  = 0xFFFFFFFF
)

// FIT timestamps count from this instant; unset or invalid ones decode to it.
var fitEpoch = time.Date(1989, time.December, 31, 0, 0, 0, 0, time.UTC)

// FITParser converts activity sessions into sensor packages. Body
// measurements come from the configured athlete since sessions lack them.
type FITParser struct {
	Athlete models.Athlete
	Logger  *slog.Logger
}

func NewFITParser(athlete models.Athlete) *FITParser {
	return &FITParser{
		Athlete: athlete,
		Logger:  slog.Default().With(slog.String("component", "fit_parser")),
	}
}

func (p *FITParser) ParseFile(filename string) ([]models.SensorPackage, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	packages, err := p.ParseData(data)
	if err != nil {
		return nil, err
	}

	source := filepath.Base(filename)
	for i := range packages {
		packages[i].Source = source
	}
	return packages, nil
}

func (p *FITParser) ParseData(data []byte) ([]models.SensorPackage, error) {
	fitFile, err := fit.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode FIT file: %w", err)
	}

	activity, err := fitFile.Activity()
	if err != nil {
		return nil, fmt.Errorf("failed to get activity from FIT: %w", err)
	}

	if len(activity.Sessions) == 0 {
		return nil, fmt.Errorf("no sessions found in FIT file")
	}

	var packages []models.SensorPackage
	for i, session := range activity.Sessions {
		pkg, ok := SessionPackage(session, p.Athlete)
		if !ok {
			p.Logger.Warn("skipping session with unsupported sport",
				slog.Int("session", i),
				slog.String("sport", session.Sport.String()),
			)
			continue
		}
		packages = append(packages, pkg)
	}

	if len(packages) == 0 {
		return nil, ErrNoPackages
	}
	return packages, nil
}

// SessionPackage maps one FIT session onto the positional package layout.
// It reports false for sports the tracker has no formula for.
func SessionPackage(session *fit.SessionMsg, athlete models.Athlete) (models.SensorPackage, bool) {
	hours := validScaled(session.GetTotalTimerTimeScaled()) / secondsInHour
	cycles := 0.0
	if session.TotalCycles != invalidUint32 {
		cycles = float64(session.TotalCycles)
	}

	pkg := models.SensorPackage{RecordedAt: validTime(session.StartTime)}

	switch session.Sport {
	case fit.SportRunning:
		pkg.Code = training.CodeRunning
		pkg.Data = []float64{cycles * stepsPerStride, hours, athlete.WeightKg}
	case fit.SportWalking, fit.SportHiking:
		pkg.Code = training.CodeWalking
		pkg.Data = []float64{cycles * stepsPerStride, hours, athlete.WeightKg, athlete.HeightCm}
	case fit.SportSwimming:
		lengths := 0.0
		if session.NumActiveLengths != invalidUint16 {
			lengths = float64(session.NumActiveLengths)
		}
		pkg.Code = training.CodeSwimming
		pkg.Data = []float64{cycles, hours, athlete.WeightKg, validScaled(session.GetPoolLengthScaled()), lengths}
	default:
		return models.SensorPackage{}, false
	}
	return pkg, true
}

func validTime(t time.Time) time.Time {
	if !t.After(fitEpoch) {
		return time.Time{}
	}
	return t
}

func validScaled(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
