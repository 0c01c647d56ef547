package training

const (
	swimmingSpeedShift       = 1.1
	swimmingWeightMultiplier = 2
)

// Swimming is a pool session counted in strokes. LengthPool is in meters,
// CountPool is the number of pool lengths swum.
type Swimming struct {
	Training
	LengthPool float64
	CountPool  int
}

func NewSwimming(action int, duration, weight, lengthPool float64, countPool int) *Swimming {
	return &Swimming{
		Training:   NewTraining(action, duration, weight),
		LengthPool: lengthPool,
		CountPool:  countPool,
	}
}

func (s *Swimming) TrainingType() string { return "Swimming" }

// MeanSpeed is derived from the pool, not from strokes, and does not depend
// on Duration.
func (s *Swimming) MeanSpeed() float64 {
	return s.LengthPool * float64(s.CountPool) / MInKm / MinutesInHour
}

// SpentCalories applies the factor 2 twice: once as a literal and once as
// swimmingWeightMultiplier.
func (s *Swimming) SpentCalories() float64 {
	return (s.MeanSpeed() + swimmingSpeedShift) * 2 * swimmingWeightMultiplier
}
