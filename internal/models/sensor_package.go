package models

import "time"

// SensorPackage is one raw reading tuple as delivered by a tracker:
// a workout code plus its positional values.
type SensorPackage struct {
	Code       string    `json:"type" yaml:"type"`
	Data       []float64 `json:"data" yaml:"data"`
	Source     string    `json:"source,omitempty" yaml:"source,omitempty"`
	RecordedAt time.Time `json:"recorded_at,omitempty" yaml:"recorded_at,omitempty"`
}
