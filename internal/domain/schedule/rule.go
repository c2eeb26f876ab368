// internal/domain/schedule/rule.go
package schedule

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Frequency discriminates the closed set of recurrence rule variants.
type Frequency string

const (
	FrequencyDaily   Frequency = "DAILY"
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
	FrequencyEvery   Frequency = "EVERY_N_DAYS"
)

var ErrInvalidRule = errors.New("invalid recurrence rule")

// Rule describes a repeating schedule. Exactly one frequency applies;
// Weekdays is meaningful only for WEEKLY, MonthDays only for MONTHLY and
// IntervalDays only for EVERY_N_DAYS. Hour/Minute are shared by all variants.
type Rule struct {
	Frequency    Frequency
	Weekdays     []int // 0 = Sunday .. 6 = Saturday
	MonthDays    []int // 1..31
	IntervalDays int
	Hour         int
	Minute       int
}

// Validate checks the structural invariants of the rule: a known frequency,
// non-empty day sets for WEEKLY/MONTHLY, a positive interval for
// EVERY_N_DAYS and an in-range time of day.
func (r Rule) Validate() error {
	if r.Hour < 0 || r.Hour > 23 || r.Minute < 0 || r.Minute > 59 {
		return fmt.Errorf("%w: time of day %02d:%02d out of range", ErrInvalidRule, r.Hour, r.Minute)
	}
	switch r.Frequency {
	case FrequencyDaily:
		return nil
	case FrequencyWeekly:
		if len(r.Weekdays) == 0 {
			return fmt.Errorf("%w: weekly rule requires at least one weekday", ErrInvalidRule)
		}
		for _, wd := range r.Weekdays {
			if wd < 0 || wd > 6 {
				return fmt.Errorf("%w: weekday %d out of range", ErrInvalidRule, wd)
			}
		}
		return nil
	case FrequencyMonthly:
		if len(r.MonthDays) == 0 {
			return fmt.Errorf("%w: monthly rule requires at least one day of month", ErrInvalidRule)
		}
		for _, d := range r.MonthDays {
			if d < 1 || d > 31 {
				return fmt.Errorf("%w: day of month %d out of range", ErrInvalidRule, d)
			}
		}
		return nil
	case FrequencyEvery:
		if r.IntervalDays < 1 {
			return fmt.Errorf("%w: interval must be at least 1 day, got %d", ErrInvalidRule, r.IntervalDays)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidRule, r.Frequency)
	}
}

// String renders a compact representation used in logs and persisted rows,
// e.g. "WEEKLY@09:00[1,3,5]" or "EVERY_N_DAYS/3@08:30".
func (r Rule) String() string {
	var b strings.Builder
	b.WriteString(string(r.Frequency))
	if r.Frequency == FrequencyEvery {
		fmt.Fprintf(&b, "/%d", r.IntervalDays)
	}
	fmt.Fprintf(&b, "@%02d:%02d", r.Hour, r.Minute)
	switch r.Frequency {
	case FrequencyWeekly:
		b.WriteString(formatDaySet(r.Weekdays))
	case FrequencyMonthly:
		b.WriteString(formatDaySet(r.MonthDays))
	}
	return b.String()
}

// ParseRule is the inverse of String. It is used by the persistence layer to
// rehydrate rules stored as a single text column.
func ParseRule(s string) (Rule, error) {
	var r Rule
	body := s
	if i := strings.IndexByte(body, '['); i >= 0 {
		if !strings.HasSuffix(body, "]") {
			return Rule{}, fmt.Errorf("%w: malformed day set in %q", ErrInvalidRule, s)
		}
		set := body[i+1 : len(body)-1]
		body = body[:i]
		for _, part := range strings.Split(set, ",") {
			var d int
			if _, err := fmt.Sscanf(strings.TrimSpace(part), "%d", &d); err != nil {
				return Rule{}, fmt.Errorf("%w: malformed day %q in %q", ErrInvalidRule, part, s)
			}
			r.MonthDays = append(r.MonthDays, d)
		}
	}
	at := strings.IndexByte(body, '@')
	if at < 0 {
		return Rule{}, fmt.Errorf("%w: missing time of day in %q", ErrInvalidRule, s)
	}
	if _, err := fmt.Sscanf(body[at+1:], "%d:%d", &r.Hour, &r.Minute); err != nil {
		return Rule{}, fmt.Errorf("%w: malformed time of day in %q", ErrInvalidRule, s)
	}
	head := body[:at]
	if slash := strings.IndexByte(head, '/'); slash >= 0 {
		if _, err := fmt.Sscanf(head[slash+1:], "%d", &r.IntervalDays); err != nil {
			return Rule{}, fmt.Errorf("%w: malformed interval in %q", ErrInvalidRule, s)
		}
		head = head[:slash]
	}
	r.Frequency = Frequency(head)
	if r.Frequency == FrequencyWeekly {
		r.Weekdays, r.MonthDays = r.MonthDays, nil
	}
	if err := r.Validate(); err != nil {
		return Rule{}, err
	}
	return r, nil
}

func formatDaySet(days []int) string {
	sorted := append([]int(nil), days...)
	sort.Ints(sorted)
	parts := make([]string, len(sorted))
	for i, d := range sorted {
		parts[i] = fmt.Sprintf("%d", d)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
