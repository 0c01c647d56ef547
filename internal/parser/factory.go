package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sstent/ftracker/internal/models"
)

// NewParser creates a parser based on file extension or content
func NewParser(filename string, athlete models.Athlete) (Parser, error) {
	// First try by extension
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".fit":
		return NewFITParser(athlete), nil
	case ".yaml", ".yml":
		return NewYAMLParser(), nil
	}

	// If extension doesn't match, detect by content
	fileType, err := DetectFileType(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to detect file type: %w", err)
	}
	return newParserForType(fileType, athlete)
}

// NewParserFromData creates a parser based on file content
func NewParserFromData(data []byte, athlete models.Athlete) (Parser, error) {
	return newParserForType(DetectFileTypeFromData(data), athlete)
}

func newParserForType(fileType FileType, athlete models.Athlete) (Parser, error) {
	switch fileType {
	case FileTypeFIT:
		return NewFITParser(athlete), nil
	case FileTypeYAML:
		return NewYAMLParser(), nil
	default:
		return nil, fmt.Errorf("unsupported file type: %s", fileType)
	}
}

// Supported reports whether filename has an extension the factory maps
// without sniffing content.
func Supported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".fit", ".yaml", ".yml":
		return true
	}
	return false
}
