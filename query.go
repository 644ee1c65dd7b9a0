package edcore

import (
	"fmt"
	"strings"
)

// Mode selects the matching strategy of a query.
type Mode int

const (
	// ModeLiteral matches the query text verbatim.
	ModeLiteral Mode = iota
	// ModePattern interprets the query as a regular expression.
	ModePattern
)

func (m Mode) String() string {
	switch m {
	case ModeLiteral:
		return "literal"
	case ModePattern:
		return "pattern"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode converts a mode name ("literal", "pattern" or "regex") into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "literal", "plain", "":
		return ModeLiteral, nil
	case "pattern", "regex", "regexp":
		return ModePattern, nil
	}
	return 0, fmt.Errorf("mode %q: %w", s, ErrModeUnavailable)
}

// Direction is the direction of a search.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// SearchQuery describes what to search for. It is a plain value; compile it
// with Compile to obtain a Matcher.
type SearchQuery struct {
	Pattern       string
	Mode          Mode
	CaseSensitive bool
	WholeWord     bool
}

func (q SearchQuery) String() string {
	var flags []string
	if !q.CaseSensitive {
		flags = append(flags, "i")
	}
	if q.WholeWord {
		flags = append(flags, "w")
	}
	return fmt.Sprintf("%s %q [%s]", q.Mode, q.Pattern, strings.Join(flags, ""))
}
