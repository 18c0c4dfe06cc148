package dietplan

import (
	"regexp"
	"strconv"
	"strings"
)

var dayHeadingPattern = regexp.MustCompile(`### Day (\d+) - (.+)`)

// DaySection is the slice of a plan between one day heading and the next.
// Text includes the heading line itself.
type DaySection struct {
	DayNumber int
	Theme     string
	Text      string
	Start     int
	End       int
}

// Sections scans the plan once and returns every day section in order of
// appearance. The last section runs to the end of the text.
func Sections(raw string) []DaySection {
	matches := dayHeadingPattern.FindAllStringSubmatchIndex(raw, -1)
	sections := make([]DaySection, 0, len(matches))
	for i, m := range matches {
		day, err := strconv.Atoi(raw[m[2]:m[3]])
		if err != nil || day < 1 {
			continue
		}
		end := len(raw)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		sections = append(sections, DaySection{
			DayNumber: day,
			Theme:     strings.TrimSpace(raw[m[4]:m[5]]),
			Text:      raw[m[0]:end],
			Start:     m[0],
			End:       end,
		})
	}
	return sections
}

// FindSection returns the section headed "### Day <day>". The numeral must match
// exactly, so day 1 never resolves to a "### Day 10" heading. When a day number
// repeats, the first occurrence wins.
func FindSection(raw string, day int) (DaySection, bool) {
	for _, s := range Sections(raw) {
		if s.DayNumber == day {
			return s, true
		}
	}
	return DaySection{}, false
}
