package parser

import "github.com/sstent/ftracker/internal/models"

// Parser turns a tracker export into sensor packages.
type Parser interface {
	ParseFile(filename string) ([]models.SensorPackage, error)
	ParseData(data []byte) ([]models.SensorPackage, error)
}
