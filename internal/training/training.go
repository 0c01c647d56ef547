// internal/training/training.go
package training

import "errors"

const (
	LenStep       = 0.65 // meters per step or stroke
	MInKm         = 1000
	MinutesInHour = 60
)

// ErrNotImplemented is the panic value raised when calories are requested
// from a bare Training that was never resolved to a concrete workout.
var ErrNotImplemented = errors.New("spent calories must be computed by a concrete workout")

// Workout is the calculation contract shared by every training kind.
type Workout interface {
	TrainingType() string
	Hours() float64
	Distance() float64
	MeanSpeed() float64
	SpentCalories() float64
}

// Training holds the readings common to all workouts.
type Training struct {
	Action   int     // steps or strokes
	Duration float64 // hours
	Weight   float64 // kg
}

func NewTraining(action int, duration, weight float64) Training {
	return Training{Action: action, Duration: duration, Weight: weight}
}

func (t Training) TrainingType() string { return "Training" }

func (t Training) Hours() float64 { return t.Duration }

// Distance returns kilometers covered.
func (t Training) Distance() float64 {
	return float64(t.Action) * LenStep / MInKm
}

// MeanSpeed returns km/h.
func (t Training) MeanSpeed() float64 {
	return t.Distance() / t.Duration
}

func (t Training) SpentCalories() float64 {
	panic(ErrNotImplemented)
}

// ShowTrainingInfo collects the computed metrics of w into a message.
func ShowTrainingInfo(w Workout) InfoMessage {
	return InfoMessage{
		TrainingType: w.TrainingType(),
		Duration:     w.Hours(),
		Distance:     w.Distance(),
		Speed:        w.MeanSpeed(),
		Calories:     w.SpentCalories(),
	}
}
