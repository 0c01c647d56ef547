package models

// Athlete carries the body measurements a FIT file does not provide
// per session.
type Athlete struct {
	WeightKg float64
	HeightCm float64
}
