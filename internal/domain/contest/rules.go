package contest

import "strings"

// Lobby attribute codes and the flag each one sets.
var attributeFlags = map[string]string{
	"IsGuaranteed": "guaranteed",
	"IsStarred":    "starred",
	"IsDoubleUp":   "double_up",
	"IsFiftyfifty": "fifty_fifty",
	"League":       "league",
	"IsSteps":      "multiplier",
	"IsQualifier":  "qualifier",
}

// Contests whose name contains one of these are never worth tracking.
var excludedNameParts = []string{"satellite", "supersat", "reignmakers"}

// Flags classifies a contest from its lobby attribute map.
type Flags struct {
	Guaranteed bool
	Starred    bool
	DoubleUp   bool
	FiftyFifty bool
	League     bool
	Multiplier bool
	Qualifier  bool
}

// FlagsFromAttributes maps the lobby attr block onto Flags. An attribute
// counts as set when it is present with any value other than "false".
func FlagsFromAttributes(attrs map[string]string) Flags {
	var f Flags
	for code, name := range attributeFlags {
		raw, ok := attrs[code]
		if !ok || strings.EqualFold(strings.TrimSpace(raw), "false") || strings.TrimSpace(raw) == "" {
			continue
		}
		switch name {
		case "guaranteed":
			f.Guaranteed = true
		case "starred":
			f.Starred = true
		case "double_up":
			f.DoubleUp = true
		case "fifty_fifty":
			f.FiftyFifty = true
		case "league":
			f.League = true
		case "multiplier":
			f.Multiplier = true
		case "qualifier":
			f.Qualifier = true
		}
	}
	return f
}

// NameExcluded reports whether the contest name carries one of the
// excluded markers, case-insensitively.
func NameExcluded(name string) bool {
	lowered := strings.ToLower(name)
	for _, part := range excludedNameParts {
		if strings.Contains(lowered, part) {
			return true
		}
	}
	return false
}

// Keep applies the lobby value policy. Only guaranteed contests above the
// small-field/low-fee floor survive; double-ups and fifty-fifties
// additionally need a field larger than 100 entries.
func Keep(name string, maxEntries int, entryFee float64, f Flags) bool {
	if NameExcluded(name) {
		return false
	}
	if !f.Guaranteed {
		return false
	}
	if maxEntries <= 100 && entryFee <= 25 {
		return false
	}
	if (f.DoubleUp || f.FiftyFifty) && maxEntries <= 100 {
		return false
	}
	return true
}
