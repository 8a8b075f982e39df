package scan

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const pngSuffix = ".png"

// MatchReason captures why a file name was selected for removal.
// Both parts must be present for a match.
type MatchReason struct {
	Whitespace rune   // first whitespace rune found in the name
	Suffix     string // the suffix as spelled in the name (e.g. ".PNG")
}

// Match reports whether name contains a whitespace rune and ends with ".png"
// in any letter case. Whitespace is anything unicode.IsSpace accepts, the same
// class strings.TrimSpace strips.
func Match(name string) (MatchReason, bool) {
	if !strings.HasSuffix(strings.ToLower(name), pngSuffix) {
		return MatchReason{}, false
	}

	idx := strings.IndexFunc(name, unicode.IsSpace)
	if idx < 0 {
		return MatchReason{}, false
	}
	r, _ := utf8.DecodeRuneInString(name[idx:])

	suffix := pngSuffix
	if len(name) >= len(pngSuffix) && strings.EqualFold(name[len(name)-len(pngSuffix):], pngSuffix) {
		suffix = name[len(name)-len(pngSuffix):]
	}

	return MatchReason{Whitespace: r, Suffix: suffix}, true
}

// HasReason returns true if the reason describes an actual match.
func (mr MatchReason) HasReason() bool {
	return mr.Whitespace != 0 && mr.Suffix != ""
}

// ToLogString formats the reason for structured logging and the history database.
// Example: `whitespace=U+0009 suffix=".PNG"`
func (mr MatchReason) ToLogString() string {
	if !mr.HasReason() {
		return "unknown"
	}
	return fmt.Sprintf("whitespace=%U suffix=%q", mr.Whitespace, mr.Suffix)
}

// ToHumanReadable formats the reason for terminal display.
// Example: "name contains a tab, ends in .PNG"
func (mr MatchReason) ToHumanReadable() string {
	if !mr.HasReason() {
		return "Unknown reason"
	}
	return fmt.Sprintf("name contains %s, ends in %s", whitespaceName(mr.Whitespace), mr.Suffix)
}

func whitespaceName(r rune) string {
	switch r {
	case ' ':
		return "a space"
	case '\t':
		return "a tab"
	case '\n':
		return "a newline"
	case '\r':
		return "a carriage return"
	case '\v':
		return "a vertical tab"
	case '\f':
		return "a form feed"
	case '\u00a0':
		return "a no-break space"
	default:
		return fmt.Sprintf("whitespace %U", r)
	}
}
