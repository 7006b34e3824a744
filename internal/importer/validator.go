package importer

import (
	"errors"
	"path/filepath"
	"strings"
)

var allowedExt = map[string]bool{
	".csv":  true,
	".xlsx": true,
	".json": true,
	".txt":  true,
	".pdf":  true,
}

func ValidateFileExtension(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))

	if ext == "" {
		return errors.New("file extension missing")
	}

	if !allowedExt[ext] {
		return errors.New("file type not allowed")
	}

	return nil
}

// FileTypeOf returns the declared file type ("csv", "pdf", …) for a
// validated filename.
func FileTypeOf(filename string) (string, error) {
	if err := ValidateFileExtension(filename); err != nil {
		return "", err
	}
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), "."), nil
}
