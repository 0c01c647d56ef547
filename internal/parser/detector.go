// internal/parser/detector.go
package parser

import (
	"bytes"
	"os"
)

type FileType string

const (
	FileTypeFIT     FileType = "fit"
	FileTypeYAML    FileType = "yaml"
	FileTypeUnknown FileType = "unknown"
)

func DetectFileType(filepath string) (FileType, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return FileTypeUnknown, err
	}
	defer file.Close()

	// Read first 512 bytes for detection
	header := make([]byte, 512)
	n, err := file.Read(header)
	if err != nil && n == 0 {
		return FileTypeUnknown, err
	}

	return DetectFileTypeFromData(header[:n]), nil
}

func DetectFileTypeFromData(data []byte) FileType {
	// FIT header carries ".FIT" at offset 8
	if len(data) >= 12 && bytes.Equal(data[8:12], []byte(".FIT")) {
		return FileTypeFIT
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	if bytes.Contains(head, []byte("packages:")) {
		return FileTypeYAML
	}

	return FileTypeUnknown
}
