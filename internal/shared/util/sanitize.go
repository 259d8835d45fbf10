package util

import (
	"errors"
	"strings"
	"unicode"
)

// ErrInvalidFileName is returned for names that are empty or consist only of dots.
var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName replaces path separators and drops control characters so the result is a
// single path segment. Dots inside a name are kept.
func SanitizeFileName(name string) (string, error) {
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	if strings.Trim(s, ".") == "" {
		return "", ErrInvalidFileName
	}
	return s, nil
}
