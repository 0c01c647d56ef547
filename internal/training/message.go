package training

import "fmt"

// InfoMessage is the rendered summary of one workout.
type InfoMessage struct {
	TrainingType string
	Duration     float64 // hours
	Distance     float64 // km
	Speed        float64 // km/h
	Calories     float64 // kcal
}

const messageSeparator = "--------------------------------------"

// Message renders the summary block. The text has no trailing newline.
func (m InfoMessage) Message() string {
	return fmt.Sprintf("Тип тренировки: %s\n"+
		"Длительность: %.3f ч\n"+
		"Дистанция: %.3f км\n"+
		"Средняя скорость: %.3f км/ч\n"+
		"Потрачено калорий: %.3f\n"+
		"%s",
		m.TrainingType, m.Duration, m.Distance, m.Speed, m.Calories, messageSeparator)
}

func (m InfoMessage) String() string { return m.Message() }
