// Package memoutil derives the display fields stored alongside a memo.
package memoutil

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	TitleMaxRunes   = 30
	TitleEllipsis   = "…"
	displayKeyShort = 6
)

// GenerateDisplayKey returns "YYYYMMDD-xxxxxx" for the current UTC day.
// The suffix comes from a fresh random UUID, so keys are unlikely but not
// guaranteed to be unique.
func GenerateDisplayKey() string {
	return DisplayKeyAt(time.Now())
}

func DisplayKeyAt(t time.Time) string {
	return t.UTC().Format("20060102") + "-" + uuid.New().String()[:displayKeyShort]
}

// GenerateTitle keeps content up to 30 code points and truncates longer
// content to 30 code points plus an ellipsis.
func GenerateTitle(content string) string {
	if utf8.RuneCountInString(content) <= TitleMaxRunes {
		return content
	}

	runes := []rune(content)
	return string(runes[:TitleMaxRunes]) + TitleEllipsis
}

// ParseProductCodes splits the comma separated product code field of the
// case form. Blank entries are dropped and order is kept.
func ParseProductCodes(text string) []string {
	codes := make([]string, 0)
	for _, part := range strings.Split(text, ",") {
		if code := Trim(part); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

// Trim strips leading and trailing white space. U+FEFF is treated as white
// space too, so text pasted with a byte order mark trims the way browsers
// trim it.
func Trim(s string) string {
	return strings.TrimFunc(s, isTrimmable)
}

// IsBlank reports whether s is empty after Trim.
func IsBlank(s string) bool {
	return Trim(s) == ""
}

func isTrimmable(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}
