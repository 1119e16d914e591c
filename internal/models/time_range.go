package models

import "fmt"

// TimeRange is one of Spotify's affinity windows.
type TimeRange string

const (
	ShortTerm  TimeRange = "short_term"
	MediumTerm TimeRange = "medium_term"
	LongTerm   TimeRange = "long_term"
)

// TimeRanges lists the windows from shortest to longest.
var TimeRanges = []TimeRange{ShortTerm, MediumTerm, LongTerm}

func (r TimeRange) Valid() bool {
	switch r {
	case ShortTerm, MediumTerm, LongTerm:
		return true
	}
	return false
}

// Label is the human name used in headings and generated playlist names.
func (r TimeRange) Label() string {
	switch r {
	case ShortTerm:
		return "Last 4 Weeks"
	case MediumTerm:
		return "Last 6 Months"
	case LongTerm:
		return "Last 1 Year"
	}
	return string(r)
}

func (r TimeRange) String() string { return string(r) }

// ParseTimeRange accepts the API names as well as the short aliases short, medium and long.
func ParseTimeRange(s string) (TimeRange, error) {
	switch s {
	case "short", string(ShortTerm):
		return ShortTerm, nil
	case "medium", string(MediumTerm):
		return MediumTerm, nil
	case "long", string(LongTerm):
		return LongTerm, nil
	}
	return "", fmt.Errorf("unknown time range %q", s)
}
