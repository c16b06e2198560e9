package engine

import (
	"strings"
	"unicode/utf8"

	"expandd/internal/rules"
)

// Match is a successful trigger match. Backspaces counts the trigger's runes
// plus one for the delimiter, which must also be erased.
type Match struct {
	Rule       rules.Rule
	Backspaces int
}

// isDelimiter reports whether r terminates a trigger.
func isDelimiter(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t'
}

// matchExpansion scans the snapshot in order for a rule whose trigger,
// immediately followed by the delimiter, is a suffix of the buffer. Requiring
// the delimiter directly after the trigger rules out mid-word matches. The
// first matching rule wins and scanning stops.
func matchExpansion(buf string, delim rune, snapshot []rules.Rule) (Match, bool) {
	for _, r := range snapshot {
		if r.Trigger == "" {
			continue
		}
		if strings.HasSuffix(buf, r.Trigger+string(delim)) {
			return Match{
				Rule:       r,
				Backspaces: utf8.RuneCountInString(r.Trigger) + 1,
			}, true
		}
	}
	return Match{}, false
}
