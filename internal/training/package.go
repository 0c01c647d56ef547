// internal/training/package.go
package training

import (
	"errors"
	"fmt"
)

const (
	CodeSwimming = "SWM"
	CodeRunning  = "RUN"
	CodeWalking  = "WLK"
)

var (
	ErrUnsupportedType = errors.New("unsupported workout type")
	ErrArityMismatch   = errors.New("wrong number of package values")
)

// ArityError reports a package whose value count does not fit its workout.
type ArityError struct {
	Code string
	Want int
	Got  int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s: %s expects %d values, got %d", ErrArityMismatch, e.Code, e.Want, e.Got)
}

func (e *ArityError) Is(target error) bool { return target == ErrArityMismatch }

type builder struct {
	arity int
	build func(data []float64) Workout
}

// Positional layouts:
//
//	SWM: action, duration, weight, length_pool, count_pool
//	RUN: action, duration, weight
//	WLK: action, duration, weight, height
var builders = map[string]builder{
	CodeSwimming: {5, func(d []float64) Workout {
		return NewSwimming(int(d[0]), d[1], d[2], d[3], int(d[4]))
	}},
	CodeRunning: {3, func(d []float64) Workout {
		return NewRunning(int(d[0]), d[1], d[2])
	}},
	CodeWalking: {4, func(d []float64) Workout {
		return NewSportsWalking(int(d[0]), d[1], d[2], d[3])
	}},
}

// ReadPackage builds the workout a sensor package describes. Values are not
// range-checked; zero or negative readings flow into the formulas as is.
func ReadPackage(code string, data []float64) (Workout, error) {
	b, ok := builders[code]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, code)
	}
	if len(data) != b.arity {
		return nil, &ArityError{Code: code, Want: b.arity, Got: len(data)}
	}
	return b.build(data), nil
}

// Arity returns how many values a package of the given code carries.
func Arity(code string) (int, bool) {
	b, ok := builders[code]
	return b.arity, ok
}

// Codes lists the supported package codes.
func Codes() []string {
	return []string{CodeSwimming, CodeRunning, CodeWalking}
}
