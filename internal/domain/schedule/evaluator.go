// internal/domain/schedule/evaluator.go
package schedule

import (
	"fmt"
	"sort"
	"time"
)

// monthScanLimit bounds the monthly wraparound search. Any day set containing
// a value <= 31 admits at least one month within two years (day 31 exists in
// seven months of every year), so the limit is never reached for valid rules.
const monthScanLimit = 48

// NextOccurrence computes the earliest instant strictly after `after` at
// which the rule fires. It is pure: the result depends only on the arguments,
// and the location of `after` is the location of the result.
func NextOccurrence(r Rule, after time.Time) (time.Time, error) {
	if err := r.Validate(); err != nil {
		return time.Time{}, err
	}
	switch r.Frequency {
	case FrequencyDaily:
		return nextDaily(r, after), nil
	case FrequencyWeekly:
		return nextWeekly(r, after), nil
	case FrequencyMonthly:
		return nextMonthly(r, after)
	case FrequencyEvery:
		return nextInterval(r, after), nil
	}
	// Unreachable: Validate rejects unknown frequencies.
	return time.Time{}, fmt.Errorf("%w: unknown frequency %q", ErrInvalidRule, r.Frequency)
}

func atTimeOfDay(r Rule, year int, month time.Month, day int, loc *time.Location) time.Time {
	return time.Date(year, month, day, r.Hour, r.Minute, 0, 0, loc)
}

func nextDaily(r Rule, after time.Time) time.Time {
	cand := atTimeOfDay(r, after.Year(), after.Month(), after.Day(), after.Location())
	if !cand.After(after) {
		cand = cand.AddDate(0, 0, 1)
	}
	return cand
}

func nextWeekly(r Rule, after time.Time) time.Time {
	inSet := make(map[int]bool, len(r.Weekdays))
	for _, wd := range r.Weekdays {
		inSet[wd] = true
	}
	// Scan day by day; offset 7 covers the wrap back to the same weekday
	// next week when today's time has already passed.
	for offset := 0; offset <= 7; offset++ {
		day := after.AddDate(0, 0, offset)
		if !inSet[int(day.Weekday())] {
			continue
		}
		cand := atTimeOfDay(r, day.Year(), day.Month(), day.Day(), after.Location())
		if cand.After(after) {
			return cand
		}
	}
	// Unreachable for a validated rule: a non-empty weekday set always
	// yields a candidate within 8 scanned days.
	return atTimeOfDay(r, after.Year(), after.Month(), after.Day(), after.Location()).AddDate(0, 0, 7)
}

func nextMonthly(r Rule, after time.Time) (time.Time, error) {
	days := append([]int(nil), r.MonthDays...)
	sort.Ints(days)

	for monthOffset := 0; monthOffset < monthScanLimit; monthOffset++ {
		// Anchor on the first of the month so adding months never
		// normalizes past the intended month (Jan 31 + 1 month is Mar 3).
		firstOfMonth := time.Date(after.Year(), after.Month(), 1, 0, 0, 0, 0, after.Location()).AddDate(0, monthOffset, 0)
		for _, day := range days {
			if day > daysInMonth(firstOfMonth.Year(), firstOfMonth.Month()) {
				continue // calendar-invalid combination, e.g. day 31 in a 30-day month
			}
			cand := atTimeOfDay(r, firstOfMonth.Year(), firstOfMonth.Month(), day, after.Location())
			if cand.After(after) {
				return cand, nil
			}
		}
	}
	return time.Time{}, fmt.Errorf("%w: no month admits any of the days %v", ErrInvalidRule, r.MonthDays)
}

func nextInterval(r Rule, after time.Time) time.Time {
	// Anchored to the rule's time of day rather than the time component of
	// `after`, so sub-day drift never accumulates across firings.
	base := after.AddDate(0, 0, r.IntervalDays)
	return atTimeOfDay(r, base.Year(), base.Month(), base.Day(), after.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
