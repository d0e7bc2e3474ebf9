package util

import (
	"path"
	"strings"
	"unicode"
)

const maxFileNameLen = 255

// DisplayFileName reduces a client-supplied file name to a safe base name for display.
// Directory components are dropped and control characters removed.
func DisplayFileName(name string) string {
	s := strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	s = path.Base(s)
	if s == "." || s == "/" || s == ".." {
		return ""
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	if len(s) > maxFileNameLen {
		s = s[:maxFileNameLen]
	}
	return strings.TrimSpace(s)
}
