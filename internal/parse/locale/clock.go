// internal/parse/locale/clock.go
package locale

import "time"

// Shared calendar arithmetic for the locale pattern tables. Everything here
// is pure over the reference instant; the location of `now` is the location
// of every produced instant.

func validClock(h, m int) bool {
	return h >= 0 && h <= 23 && m >= 0 && m <= 59
}

// clockFromTokens parses the hour/minute/half submatch tokens of a time
// fragment. halfTok is the "half past" marker (半). Range validation happens
// after the caller applies its meridiem shift.
func clockFromTokens(hourTok, minTok, halfTok string) (h, m int, ok bool) {
	h, ok = parseNumber(hourTok)
	if !ok {
		return 0, 0, false
	}
	if halfTok != "" {
		return h, 30, true
	}
	if minTok == "" {
		return h, 0, true
	}
	m, ok = parseNumber(minTok)
	if !ok {
		return 0, 0, false
	}
	return h, m, true
}

func dayAt(day time.Time, h, m int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, day.Location())
}

// todayOrTomorrow resolves a bare time of day: today at h:m, rolled to
// tomorrow when that instant has already passed.
func todayOrTomorrow(now time.Time, h, m int) time.Time {
	cand := dayAt(now, h, m)
	if !cand.After(now) {
		cand = cand.AddDate(0, 0, 1)
	}
	return cand
}

// nextWeekday resolves the named weekday strictly in the future: when today
// is that weekday, it rolls a full cycle forward regardless of the time of
// day. This removes the same-day ambiguity of naive weekday arithmetic.
func nextWeekday(now time.Time, weekday, h, m int) time.Time {
	days := (weekday - int(now.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return dayAt(now.AddDate(0, 0, days), h, m)
}

// monthDayInstant resolves an explicit month/day with no year: the next
// occurrence of that calendar date strictly after now, skipping years in
// which the combination does not exist (Feb 29). A combination that exists
// in no year (Feb 30) is rejected.
func monthDayInstant(now time.Time, month, day, h, m int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	for year := now.Year(); year <= now.Year()+8; year++ {
		if day > daysIn(year, time.Month(month)) {
			continue
		}
		cand := time.Date(year, time.Month(month), day, h, m, 0, 0, now.Location())
		if cand.After(now) {
			return cand, true
		}
	}
	return time.Time{}, false
}

// yearDateInstant resolves a fully explicit date. Calendar-invalid or
// non-future dates are rejected; an explicit year leaves no natural unit to
// roll forward by.
func yearDateInstant(now time.Time, year, month, day, h, m int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > daysIn(year, time.Month(month)) {
		return time.Time{}, false
	}
	cand := time.Date(year, time.Month(month), day, h, m, 0, 0, now.Location())
	if !cand.After(now) {
		return time.Time{}, false
	}
	return cand, true
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
