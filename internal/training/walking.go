package training

import "math"

const (
	walkingWeightMultiplier = 0.035
	walkingSpeedMultiplier  = 0.029
	walkingSpeedDegree      = 2
)

// SportsWalking is a race-walking session; Height is in centimeters.
type SportsWalking struct {
	Training
	Height float64
}

func NewSportsWalking(action int, duration, weight, height float64) *SportsWalking {
	return &SportsWalking{Training: NewTraining(action, duration, weight), Height: height}
}

func (w *SportsWalking) TrainingType() string { return "SportsWalking" }

// SpentCalories floors speed²/height before scaling it, so the speed term
// only contributes once speed² reaches the height value.
func (w *SportsWalking) SpentCalories() float64 {
	speedTerm := math.Floor(math.Pow(w.MeanSpeed(), walkingSpeedDegree) / w.Height)
	return (walkingWeightMultiplier*w.Weight +
		speedTerm*walkingSpeedMultiplier*w.Weight) * MinutesInHour
}
