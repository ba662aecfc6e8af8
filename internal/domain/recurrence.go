package domain

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidRecurrenceRule is returned when a rule string cannot be parsed.
var ErrInvalidRecurrenceRule = errors.New("invalid recurrence rule")

// RecurrenceRule is the parsed form of the limited rule grammar
// FREQ=WEEKLY;BYDAY=MO,WE;COUNT=4. Only the three keys are recognized;
// only weekly frequency expands.
type RecurrenceRule struct {
	Freq  string
	ByDay []time.Weekday
	Count int
}

var dayCodes = map[string]time.Weekday{
	"SU": time.Sunday,
	"MO": time.Monday,
	"TU": time.Tuesday,
	"WE": time.Wednesday,
	"TH": time.Thursday,
	"FR": time.Friday,
	"SA": time.Saturday,
}

// ParseRecurrenceRule parses a rule string. Unknown keys are ignored;
// malformed values for the known keys are an error.
func ParseRecurrenceRule(raw string) (RecurrenceRule, error) {
	var rule RecurrenceRule

	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return RecurrenceRule{}, ErrInvalidRecurrenceRule
		}

		switch strings.ToUpper(kv[0]) {
		case "FREQ":
			rule.Freq = strings.ToUpper(kv[1])
		case "BYDAY":
			for _, code := range strings.Split(kv[1], ",") {
				wd, ok := dayCodes[strings.ToUpper(strings.TrimSpace(code))]
				if !ok {
					return RecurrenceRule{}, ErrInvalidRecurrenceRule
				}
				rule.ByDay = append(rule.ByDay, wd)
			}
		case "COUNT":
			n, err := strconv.Atoi(strings.TrimSpace(kv[1]))
			if err != nil || n <= 0 {
				return RecurrenceRule{}, ErrInvalidRecurrenceRule
			}
			rule.Count = n
		}
	}

	return rule, nil
}

// ExpandRecurrence turns a weekly rule into concrete dates strictly after
// start, in ascending order. count caps the total number of instances across
// all requested weekdays. Non-weekly frequencies expand to nothing; they are
// unsupported, not an error.
func ExpandRecurrence(start time.Time, rule RecurrenceRule, count int) []time.Time {
	if rule.Freq != "WEEKLY" || count <= 0 || len(rule.ByDay) == 0 {
		return nil
	}

	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	weekStart := startDay.AddDate(0, 0, -int(startDay.Weekday())) // Sunday of the start week

	offsets := make([]int, 0, len(rule.ByDay))
	seen := make(map[int]bool, len(rule.ByDay))
	for _, wd := range rule.ByDay {
		if !seen[int(wd)] {
			seen[int(wd)] = true
			offsets = append(offsets, int(wd))
		}
	}
	sort.Ints(offsets)

	var dates []time.Time
	for week := 0; week <= count && len(dates) < count; week++ {
		for _, offset := range offsets {
			candidate := weekStart.AddDate(0, 0, week*7+offset)
			if !candidate.After(startDay) {
				continue
			}
			dates = append(dates, candidate)
			if len(dates) == count {
				break
			}
		}
	}

	return dates
}
