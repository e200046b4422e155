package export

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	maxBaseNameLen  = 50
	defaultBaseName = "icon"
)

var (
	unsafeNameChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
)

// BaseName derives a file-system friendly name from a display label:
// lowercase, only [a-z0-9], whitespace and '-', whitespace runs (Unicode
// spaces included) collapsed to '-', at most 50 characters. It falls back to "icon".
func BaseName(label string) string {
	name := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, strings.ToLower(label))
	name = unsafeNameChars.ReplaceAllString(name, "")
	name = strings.TrimSpace(name)
	name = whitespaceRun.ReplaceAllString(name, "-")
	if len(name) > maxBaseNameLen {
		name = name[:maxBaseNameLen]
	}
	if name == "" {
		return defaultBaseName
	}
	return name
}

// Filename is BaseName(label) with ext appended.
func Filename(label, ext string) string {
	return BaseName(label) + "." + strings.TrimPrefix(ext, ".")
}
