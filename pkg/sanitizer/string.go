package sanitizer

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	sizeSeparatorRegex = regexp.MustCompile(`(\d)\s*[xX×]\s*(\d)`)
	zipPlusFourRegex   = regexp.MustCompile(`^(\d{5})-?\d{4}$`)
)

// TrimAndNormalize trims s and collapses every whitespace run to one space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else if !unicode.IsControl(r) {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeSize writes dimensions as "5x10".
func NormalizeSize(size string) string {
	return sizeSeparatorRegex.ReplaceAllString(TrimAndNormalize(size), "${1}x${2}")
}

// NormalizeNotes trims notes and drops control characters, keeping line breaks.
func NormalizeNotes(notes string) string {
	notes = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, notes)
	return strings.TrimSpace(notes)
}

// NormalizeZip trims a ZIP code and reduces ZIP+4 to its first five digits.
func NormalizeZip(zip string) string {
	zip = strings.TrimSpace(zip)
	if m := zipPlusFourRegex.FindStringSubmatch(zip); m != nil {
		return m[1]
	}
	return zip
}
