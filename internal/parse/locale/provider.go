// internal/parse/locale/provider.go
package locale

import (
	"regexp"
	"time"

	"reminder_bot/internal/domain/schedule"
)

// Resolution is what a pattern extractor produces: an instant for absolute,
// relative and fuzzy patterns, or a recurrence rule for recurring patterns.
type Resolution struct {
	At   time.Time
	Rule *schedule.Rule
}

// Pattern couples a regular expression with its extraction function. An
// extractor returns ok=false to reject a syntactic match (out-of-range time,
// calendar-invalid date), which lets the resolver fall through to the next
// pattern or tier instead of failing.
type Pattern struct {
	Re *regexp.Regexp
	// SpanGroup, when non-zero, names the capture group whose span is the
	// temporal expression to strip from the text. Used by patterns that
	// need a leading guard character because RE2 has no lookbehind.
	SpanGroup  int
	Confidence float64
	Extract    func(m []string, now time.Time) (Resolution, bool)
}

// Messages holds the per-locale strings the transport layer renders.
// Templates are plain fmt.Sprintf formats, no generation involved.
type Messages struct {
	DefaultLabel     string // content when extraction leaves nothing
	TimeLayout       string
	CreatedOneShot   string // args: instant, content
	CreatedRecurring string // args: rule summary, content
	FallbackNotice   string // args: instant, content
	Fired            string // args: content
	ListHeader       string
	ListEmpty        string
	Cancelled        string
	NotFound         string
	CreateFailed     string
	CancelButton     string
	RestoreButton    string
	Reactivated      string // args: content
	Expired          string
	AdminHint        string
	Help             string
}

// Provider supplies the per-locale pattern tables, in the fixed tier order
// the resolver walks: Absolute, Relative, Recurring, Fuzzy. Patterns within
// a tier are ordered; the first accepting pattern wins. Adding a locale
// means adding one Provider implementation.
type Provider interface {
	Tag() string
	Absolute() []Pattern
	Relative() []Pattern
	Recurring() []Pattern
	Fuzzy() []Pattern
	Messages() Messages
	// ListKeywords are the exact phrases that request a reminder listing
	// instead of a creation.
	ListKeywords() []string
}

// ForTag maps a locale tag to its provider, defaulting to Traditional
// Chinese for unknown or empty tags.
func ForTag(tag string) Provider {
	switch tag {
	case "ja", "ja-JP":
		return NewJapanese()
	default:
		return NewChinese()
	}
}
