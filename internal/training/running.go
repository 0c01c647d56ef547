package training

const (
	runningSpeedMultiplier = 18
	runningSpeedShift      = 20
)

// Running is a jogging session counted in steps.
type Running struct {
	Training
}

func NewRunning(action int, duration, weight float64) *Running {
	return &Running{Training: NewTraining(action, duration, weight)}
}

func (r *Running) TrainingType() string { return "Running" }

func (r *Running) SpentCalories() float64 {
	return (runningSpeedMultiplier*r.MeanSpeed() - runningSpeedShift) *
		r.Weight / MInKm * MinutesInHour
}
