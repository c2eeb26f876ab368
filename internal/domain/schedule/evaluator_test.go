package schedule

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var taipei = time.FixedZone("CST", 8*60*60)

// 2026-01-07 is a Wednesday.
func wednesday(hour, min int) time.Time {
	return time.Date(2026, 1, 7, hour, min, 0, 0, taipei)
}

func TestNextOccurrenceDaily(t *testing.T) {
	rule := Rule{Frequency: FrequencyDaily, Hour: 9, Minute: 0}

	next, err := NextOccurrence(rule, wednesday(8, 0))
	require.NoError(t, err)
	assert.Equal(t, wednesday(9, 0), next, "time still ahead today")

	next, err = NextOccurrence(rule, wednesday(9, 0))
	require.NoError(t, err)
	assert.Equal(t, wednesday(9, 0).AddDate(0, 0, 1), next, "exact boundary must advance a day")

	next, err = NextOccurrence(rule, wednesday(10, 30))
	require.NoError(t, err)
	assert.Equal(t, wednesday(9, 0).AddDate(0, 0, 1), next)
}

func TestNextOccurrenceWeekly(t *testing.T) {
	tests := []struct {
		name     string
		weekdays []int
		after    time.Time
		want     time.Time
	}{
		{
			name:     "single weekday wraps to next week",
			weekdays: []int{1}, // Monday
			after:    wednesday(10, 0),
			want:     time.Date(2026, 1, 12, 9, 0, 0, 0, taipei),
		},
		{
			name:     "same day before the rule time",
			weekdays: []int{3}, // Wednesday
			after:    wednesday(8, 0),
			want:     wednesday(9, 0),
		},
		{
			name:     "same day after the rule time rolls a full cycle",
			weekdays: []int{3},
			after:    wednesday(10, 0),
			want:     wednesday(9, 0).AddDate(0, 0, 7),
		},
		{
			name:     "earliest of several weekdays wins",
			weekdays: []int{1, 3, 5},
			after:    wednesday(10, 0),
			want:     time.Date(2026, 1, 9, 9, 0, 0, 0, taipei), // Friday
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := Rule{Frequency: FrequencyWeekly, Weekdays: tt.weekdays, Hour: 9, Minute: 0}
			next, err := NextOccurrence(rule, tt.after)
			require.NoError(t, err)
			assert.Equal(t, tt.want, next)
		})
	}
}

func TestNextOccurrenceMonthly(t *testing.T) {
	tests := []struct {
		name      string
		monthDays []int
		after     time.Time
		want      time.Time
	}{
		{
			name:      "later this month",
			monthDays: []int{15},
			after:     time.Date(2026, 1, 7, 10, 0, 0, 0, taipei),
			want:      time.Date(2026, 1, 15, 9, 0, 0, 0, taipei),
		},
		{
			name:      "wraps to next month",
			monthDays: []int{5},
			after:     time.Date(2026, 1, 7, 10, 0, 0, 0, taipei),
			want:      time.Date(2026, 2, 5, 9, 0, 0, 0, taipei),
		},
		{
			name:      "skips months without day 31",
			monthDays: []int{31},
			after:     time.Date(2026, 4, 1, 0, 0, 0, 0, taipei),
			want:      time.Date(2026, 5, 31, 9, 0, 0, 0, taipei),
		},
		{
			name:      "day 30 skips February",
			monthDays: []int{30},
			after:     time.Date(2026, 2, 1, 0, 0, 0, 0, taipei),
			want:      time.Date(2026, 3, 30, 9, 0, 0, 0, taipei),
		},
		{
			name:      "earliest valid day of the set",
			monthDays: []int{5, 20},
			after:     time.Date(2026, 1, 7, 10, 0, 0, 0, taipei),
			want:      time.Date(2026, 1, 20, 9, 0, 0, 0, taipei),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := Rule{Frequency: FrequencyMonthly, MonthDays: tt.monthDays, Hour: 9, Minute: 0}
			next, err := NextOccurrence(rule, tt.after)
			require.NoError(t, err)
			assert.Equal(t, tt.want, next)
		})
	}
}

func TestNextOccurrenceIntervalAnchorsToRuleTime(t *testing.T) {
	rule := Rule{Frequency: FrequencyEvery, IntervalDays: 3, Hour: 8, Minute: 0}

	// Fired at 22:45; the next occurrence lands on the rule's 08:00, not on
	// the firing time, so sub-day drift never accumulates.
	next, err := NextOccurrence(rule, time.Date(2026, 1, 7, 22, 45, 0, 0, taipei))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 10, 8, 0, 0, 0, taipei), next)
}

func TestNextOccurrenceRejectsInvalidRules(t *testing.T) {
	invalid := []Rule{
		{Frequency: FrequencyWeekly, Hour: 9},                     // empty weekday set
		{Frequency: FrequencyMonthly, Hour: 9},                    // empty day set
		{Frequency: FrequencyEvery, IntervalDays: 0, Hour: 9},     // non-positive interval
		{Frequency: FrequencyDaily, Hour: 24},                     // hour out of range
		{Frequency: FrequencyWeekly, Weekdays: []int{7}, Hour: 9}, // weekday out of range
		{Frequency: "YEARLY", Hour: 9},                            // unknown frequency
	}
	for _, rule := range invalid {
		_, err := NextOccurrence(rule, wednesday(10, 0))
		assert.ErrorIs(t, err, ErrInvalidRule, "rule %v", rule)
	}
}

// Property: for any valid rule and reference instant, the next occurrence is
// strictly after the reference, and advancing repeatedly never steps back.
func TestNextOccurrenceAlwaysAdvances(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, taipei)

	for i := 0; i < 500; i++ {
		rule := randomRule(rng)
		after := base.Add(time.Duration(rng.Intn(400*24)) * time.Hour).Add(time.Duration(rng.Intn(3600)) * time.Second)

		cur := after
		for step := 0; step < 5; step++ {
			next, err := NextOccurrence(rule, cur)
			require.NoError(t, err, "rule %v after %v", rule, cur)
			require.True(t, next.After(cur), "rule %v: %v is not after %v", rule, next, cur)
			cur = next
		}
	}
}

func randomRule(rng *rand.Rand) Rule {
	r := Rule{Hour: rng.Intn(24), Minute: rng.Intn(60)}
	switch rng.Intn(4) {
	case 0:
		r.Frequency = FrequencyDaily
	case 1:
		r.Frequency = FrequencyWeekly
		for _, wd := range rng.Perm(7)[:1+rng.Intn(3)] {
			r.Weekdays = append(r.Weekdays, wd)
		}
	case 2:
		r.Frequency = FrequencyMonthly
		for _, d := range rng.Perm(31)[:1+rng.Intn(3)] {
			r.MonthDays = append(r.MonthDays, d+1)
		}
	default:
		r.Frequency = FrequencyEvery
		r.IntervalDays = 1 + rng.Intn(30)
	}
	return r
}

func TestRuleStringRoundTrip(t *testing.T) {
	rules := []Rule{
		{Frequency: FrequencyDaily, Hour: 8, Minute: 30},
		{Frequency: FrequencyWeekly, Weekdays: []int{5, 1, 3}, Hour: 9, Minute: 0},
		{Frequency: FrequencyMonthly, MonthDays: []int{20, 5}, Hour: 21, Minute: 15},
		{Frequency: FrequencyEvery, IntervalDays: 3, Hour: 8, Minute: 0},
	}
	for _, rule := range rules {
		parsed, err := ParseRule(rule.String())
		require.NoError(t, err, "round trip of %s", rule)
		assert.Equal(t, rule.Frequency, parsed.Frequency)
		assert.Equal(t, rule.Hour, parsed.Hour)
		assert.Equal(t, rule.Minute, parsed.Minute)
		assert.Equal(t, rule.IntervalDays, parsed.IntervalDays)
		assert.ElementsMatch(t, rule.Weekdays, parsed.Weekdays)
		assert.ElementsMatch(t, rule.MonthDays, parsed.MonthDays)
	}
}
