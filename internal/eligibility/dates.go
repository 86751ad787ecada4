package eligibility

import (
	"time"

	"github.com/markusmobius/go-dateparser"
)

// DateParser turns free text into a date relative to now. ok is false when
// nothing date-like was found.
type DateParser func(text string, now time.Time) (t time.Time, ok bool)

// ParseFutureDate resolves ambiguous dates ("January 15") to their next occurrence.
// Text that is not a date on its own is searched for an embedded one.
func ParseFutureDate(text string, now time.Time) (time.Time, bool) {
	cfg := &dateparser.Configuration{
		CurrentTime:         now,
		PreferredDateSource: dateparser.Future,
	}
	if d, err := dateparser.Parse(cfg, text); err == nil && !d.Time.IsZero() {
		return d.Time, true
	}

	// "Starts Jan 2027", "joining from 10 September": take the first date inside the text
	cfg.Languages = []string{"en"}
	_, found, err := dateparser.Search(cfg, text)
	if err != nil {
		return time.Time{}, false
	}
	for _, r := range found {
		if !r.Date.Time.IsZero() {
			return r.Date.Time, true
		}
	}
	return time.Time{}, false
}

// TargetYear is the hiring season the engine screens for: the current year
// until the end of May, the next one afterwards.
func TargetYear(now time.Time) int {
	if now.Month() > time.May {
		return now.Year() + 1
	}
	return now.Year()
}

func seasonWindow(year int, loc *time.Location) (start, end time.Time) {
	start = time.Date(year, time.May, 20, 0, 0, 0, 0, loc)
	end = time.Date(year, time.September, 1, 0, 0, 0, 0, loc)
	return start, end
}
