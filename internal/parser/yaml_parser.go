package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/sstent/ftracker/internal/models"
)

var ErrNoPackages = errors.New("no packages found")

// packageFile is the on-disk layout:
//
//	packages:
//	  - type: RUN
//	    data: [15000, 1, 75]
type packageFile struct {
	Packages []models.SensorPackage `yaml:"packages"`
}

// YAMLParser reads hand-written or exported package lists.
type YAMLParser struct{}

func NewYAMLParser() *YAMLParser {
	return &YAMLParser{}
}

func (p *YAMLParser) ParseFile(filename string) ([]models.SensorPackage, error) {
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
		if packages[i].Source == "" {
			packages[i].Source = source
		}
	}
	return packages, nil
}

func (p *YAMLParser) ParseData(data []byte) ([]models.SensorPackage, error) {
	var file packageFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode package file: %w", err)
	}

	if len(file.Packages) == 0 {
		return nil, ErrNoPackages
	}

	for i, pkg := range file.Packages {
		if pkg.Code == "" {
			return nil, fmt.Errorf("package %d: missing type", i)
		}
	}

	return file.Packages, nil
}
