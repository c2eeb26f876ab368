// internal/parse/resolver.go

// Package parse turns free-form Traditional Chinese or Japanese text into a
// concrete trigger instant or a recurrence rule. Resolution is strictly
// first-match-wins across the four pattern tiers a locale provider exposes;
// partial matches are never merged across tiers.
package parse

import (
	"strings"
	"time"

	"reminder_bot/internal/domain/schedule"
	"reminder_bot/internal/parse/locale"
)

// Kind tags the variant of a resolution outcome.
type Kind string

const (
	KindAbsolute   Kind = "ABSOLUTE"
	KindRelative   Kind = "RELATIVE"
	KindRecurring  Kind = "RECURRING"
	KindFuzzy      Kind = "FUZZY"
	KindUnresolved Kind = "UNRESOLVED"
)

// Outcome is the result of resolving a temporal expression. When Kind
// carries an instant, At is strictly after the reference instant (rollover
// already applied); when Kind is RECURRING, Rule is non-nil and At is zero;
// when UNRESOLVED, neither is set and Leftover holds the full input.
// Confidence is diagnostic only, for logging and ranking, never for
// choosing between candidates.
type Outcome struct {
	Kind       Kind
	At         time.Time
	Rule       *schedule.Rule
	Matched    string
	Leftover   string
	Confidence float64
}

// Resolve tries the provider's pattern tiers in fixed priority order
// (Absolute, Relative, Recurring, Fuzzy) and returns the first accepted
// match. The matched span is stripped from the text and the remainder is
// returned as the candidate reminder content. Resolve is pure and
// side-effect free; the reference instant carries the working time zone.
func Resolve(text string, p locale.Provider, now time.Time) Outcome {
	text = strings.TrimSpace(text)
	tiers := []struct {
		kind     Kind
		patterns []locale.Pattern
	}{
		{KindAbsolute, p.Absolute()},
		{KindRelative, p.Relative()},
		{KindRecurring, p.Recurring()},
		{KindFuzzy, p.Fuzzy()},
	}
	for _, tier := range tiers {
		for _, pat := range tier.patterns {
			idx := pat.Re.FindStringSubmatchIndex(text)
			if idx == nil {
				continue
			}
			res, ok := pat.Extract(submatches(text, idx), now)
			if !ok {
				continue // rejected match, fall through to the next pattern
			}
			start, end := idx[0], idx[1]
			if g := pat.SpanGroup; g > 0 && idx[2*g] >= 0 {
				start, end = idx[2*g], idx[2*g+1]
			}
			out := Outcome{
				Kind:       tier.kind,
				Matched:    strings.TrimSpace(text[start:end]),
				Leftover:   strings.TrimSpace(text[:start] + text[end:]),
				Confidence: pat.Confidence,
			}
			if tier.kind == KindRecurring {
				out.Rule = res.Rule
			} else {
				if !res.At.After(now) {
					continue // an extractor must never hand back a past instant
				}
				out.At = res.At
			}
			return out
		}
	}
	return Outcome{Kind: KindUnresolved, Leftover: text}
}

// submatches materializes FindStringSubmatchIndex spans into the []string
// shape extractors consume, with "" for non-participating groups.
func submatches(text string, idx []int) []string {
	m := make([]string, len(idx)/2)
	for i := range m {
		if idx[2*i] >= 0 {
			m[i] = text[idx[2*i]:idx[2*i+1]]
		}
	}
	return m
}
