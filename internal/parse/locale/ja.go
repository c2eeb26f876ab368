// internal/parse/locale/ja.go
package locale

import (
	"regexp"
	"time"

	"reminder_bot/internal/domain/schedule"
)

type japaneseProvider struct{}

// NewJapanese returns the Japanese pattern provider.
func NewJapanese() Provider { return japaneseProvider{} }

func (japaneseProvider) Tag() string          { return "ja" }
func (japaneseProvider) Absolute() []Pattern  { return jaAbsolute }
func (japaneseProvider) Relative() []Pattern  { return jaRelative }
func (japaneseProvider) Recurring() []Pattern { return jaRecurring }
func (japaneseProvider) Fuzzy() []Pattern     { return jaFuzzy }

func (japaneseProvider) Messages() Messages {
	return Messages{
		DefaultLabel:     "リマインダー",
		TimeLayout:       "2006/01/02 15:04",
		CreatedOneShot:   "はい、%s にお知らせします:%s",
		CreatedRecurring: "はい、繰り返しリマインダーを設定しました(%s):%s",
		FallbackNotice:   "時間がよく分からなかったので、%s に設定しました:%s",
		Fired:            "⏰ リマインダー:%s",
		ListHeader:       "現在のリマインダー:",
		ListEmpty:        "進行中のリマインダーはありません。",
		Cancelled:        "リマインダーを取り消しました:%s",
		NotFound:         "そのリマインダーは見つかりませんでした。",
		CreateFailed:     "リマインダーを作成できませんでした。しばらくしてからもう一度お試しください。",
		CancelButton:     "取消",
		RestoreButton:    "元に戻す",
		Reactivated:      "リマインダーを再開しました:%s",
		Expired:          "このリマインダーの時刻は既に過ぎているため、再開できません。",
		AdminHint:        "(管理者モード:すべてのリマインダーを取り消せます)",
		Help: "リマインドしたい内容をそのまま送ってください。例:\n" +
			"「明日8時に薬を飲む」\n" +
			"「30分後に買い物」\n" +
			"「毎週月曜9時に会議」\n" +
			"「一覧」と送ると現在のリマインダーを表示します。",
	}
}

func (japaneseProvider) ListKeywords() []string {
	return []string{"一覧", "リスト", "リマインダー一覧"}
}

const (
	jaNum = `[0-9０-９〇零一二三四五六七八九十]`
	// trailing に/で particles belong to the temporal span, not the content.
	// A 間 right after 時 is captured so extractors can reject it: N時間 is
	// a duration for the offset pattern, not the clock time N時.
	jaClockFrag = `(?:(午前|午後|朝|夜)\s*)?(` + jaNum + `{1,3})時(?:(` + jaNum + `{1,2})分|(半)|(間))?`
	jaTail      = `(?:に|で)?\s*`
)

var jaWeekdayIndex = map[rune]int{
	'日': 0, '月': 1, '火': 2, '水': 3, '木': 4, '金': 5, '土': 6,
}

func jaShiftMeridiem(meridiem string, h int) int {
	switch meridiem {
	case "午後", "夜":
		if h < 12 {
			h += 12
		}
	}
	return h
}

func jaClock(meridiem, hourTok, minTok, halfTok, kanTok string) (int, int, bool) {
	if kanTok != "" {
		return 0, 0, false // N時間 is a duration, not a time of day
	}
	if hourTok == "" {
		return defaultHour, 0, true
	}
	h, m, ok := clockFromTokens(hourTok, minTok, halfTok)
	if !ok {
		return 0, 0, false
	}
	h = jaShiftMeridiem(meridiem, h)
	if !validClock(h, m) {
		return 0, 0, false
	}
	return h, m, true
}

func jaWeekdaySet(tokens string) []int {
	var days []int
	seen := make(map[int]bool)
	for _, r := range tokens {
		wd, ok := jaWeekdayIndex[r]
		if !ok {
			continue
		}
		if !seen[wd] {
			seen[wd] = true
			days = append(days, wd)
		}
	}
	return days
}

var jaMonthDayToken = regexp.MustCompile(`(` + jaNum + `+)日`)

func jaMonthDaySet(tokens string) ([]int, bool) {
	var days []int
	seen := make(map[int]bool)
	for _, m := range jaMonthDayToken.FindAllStringSubmatch(tokens, -1) {
		d, ok := parseNumber(m[1])
		if !ok || d < 1 || d > 31 {
			return nil, false
		}
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	return days, len(days) > 0
}

var jaAbsolute = []Pattern{
	{
		// 2026年3月5日午後3時半
		Re:         regexp.MustCompile(`([0-9０-９]{4})年\s*(` + jaNum + `+)月(` + jaNum + `+)日\s*(?:` + jaClockFrag + `)?` + jaTail),
		Confidence: 0.95,
		Extract: func(m []string, now time.Time) (Resolution, bool) {
			year, ok1 := parseNumber(m[1])
			month, ok2 := parseNumber(m[2])
			day, ok3 := parseNumber(m[3])
			h, min, ok4 := jaClock(m[4], m[5], m[6], m[7], m[8])
			if !ok1 || !ok2 || !ok3 || !ok4 {
				return Resolution{}, false
			}
			at, ok := yearDateInstant(now, year, month, day, h, min)
			return Resolution{At: at}, ok
		},
	},
	{
		// 3月5日8時
		Re:         regexp.MustCompile(`(` + jaNum + `+)月(` + jaNum + `+)日\s*(?:` + jaClockFrag + `)?` + jaTail),
		Confidence: 0.9,
		Extract: func(m []string, now time.Time) (Resolution, bool) {
			month, ok1 := parseNumber(m[1])
			day, ok2 := parseNumber(m[2])
			h, min, ok3 := jaClock(m[3], m[4], m[5], m[6], m[7])
			if !ok1 || !ok2 || !ok3 {
				return Resolution{}, false
			}
			at, ok := monthDayInstant(now, month, day, h, min)
			return Resolution{At: at}, ok
		},
	},
	{
		// 8時 / 午後3時半 at the start of the message
		Re:         regexp.MustCompile(`^` + jaClockFrag + jaTail),
		Confidence: 0.7,
		Extract: func(m []string, now time.Time) (Resolution, bool) {
			if m[5] != "" {
				return Resolution{}, false // N時間後, leave it to the offset pattern
			}
			h, min, ok := clockFromTokens(m[2], m[3], m[4])
			if !ok {
				return Resolution{}, false
			}
			h = jaShiftMeridiem(m[1], h)
			if !validClock(h, min) {
				return Resolution{}, false
			}
			return Resolution{At: todayOrTomorrow(now, h, min)}, true
		},
	},
}

var jaRelative = []Pattern{
	{
		// 今日/明日/明後日(+時刻)
		Re:         regexp.MustCompile(`(明後日|あさって|明日|あした|あす|今日|きょう|本日)\s*(?:` + jaClockFrag + `)?` + jaTail),
		Confidence: 0.9,
		Extract: func(m []string, now time.Time) (Resolution, bool) {
			offset := map[string]int{"今日": 0, "きょう": 0, "本日": 0, "明日": 1, "あした": 1, "あす": 1, "明後日": 2, "あさって": 2}[m[1]]
			if m[3] == "" {
				if offset == 0 {
					return Resolution{}, false
				}
				return Resolution{At: dayAt(now.AddDate(0, 0, offset), now.Hour(), now.Minute())}, true
			}
			h, min, ok := jaClock(m[2], m[3], m[4], m[5], m[6])
			if !ok {
				return Resolution{}, false
			}
			cand := dayAt(now.AddDate(0, 0, offset), h, min)
			if !cand.After(now) {
				cand = cand.AddDate(0, 0, 1)
			}
			return Resolution{At: cand}, true
		},
	},
	{
		// 来週月曜(+時刻)
		Re:         regexp.MustCompile(`来週([月火水木金土日])曜(?:日)?\s*(?:` + jaClockFrag + `)?` + jaTail),
		Confidence: 0.85,
		Extract: func(m []string, now time.Time) (Resolution, bool) {
			wd := jaWeekdayIndex[[]rune(m[1])[0]]
			h, min, ok := jaClock(m[2], m[3], m[4], m[5], m[6])
			if !ok {
				return Resolution{}, false
			}
			return Resolution{At: nextWeekday(now, wd, h, min)}, true
		},
	},
	{
		// 月曜(+時刻), guarded so 毎週/来週 never match here
		Re:         regexp.MustCompile(`(?:^|[^毎来週])(([月火水木金土日])曜(?:日)?\s*(?:` + jaClockFrag + `)?` + jaTail + `)`),
		SpanGroup:  1,
		Confidence: 0.8,
		Extract: func(m []string, now time.Time) (Resolution, bool) {
			wd := jaWeekdayIndex[[]rune(m[2])[0]]
			h, min, ok := jaClock(m[3], m[4], m[5], m[6], m[7])
			if !ok {
				return Resolution{}, false
			}
			return Resolution{At: nextWeekday(now, wd, h, min)}, true
		},
	},
	{
		// 30分後 / 2時間後 / 3日後
		Re:         regexp.MustCompile(`(` + jaNum + `+)\s*(時間|分間|分|日)後\s*(?:に)?`),
		Confidence: 0.9,
		Extract: func(m []string, now time.Time) (Resolution, bool) {
			n, ok := parseNumber(m[1])
			if !ok || n < 1 {
				return Resolution{}, false
			}
			switch m[2] {
			case "分", "分間":
				return Resolution{At: now.Add(time.Duration(n) * time.Minute)}, true
			case "日":
				return Resolution{At: now.AddDate(0, 0, n)}, true
			default:
				return Resolution{At: now.Add(time.Duration(n) * time.Hour)}, true
			}
		},
	},
}

var jaRecurring = []Pattern{
	{
		// 毎日8時
		Re:         regexp.MustCompile(`毎日\s*(?:` + jaClockFrag + `)?` + jaTail),
		Confidence: 0.9,
		Extract: func(m []string, now time.Time) (Resolution, bool) {
			h, min, ok := jaClock(m[1], m[2], m[3], m[4], m[5])
			if !ok {
				return Resolution{}, false
			}
			return ruleResolution(schedule.Rule{Frequency: schedule.FrequencyDaily, Hour: h, Minute: min})
		},
	},
	{
		// 毎週月曜9時 / 毎週月水金曜日
		Re:         regexp.MustCompile(`毎週((?:[月火水木金土日][、,，]?)+)曜(?:日)?\s*(?:` + jaClockFrag + `)?` + jaTail),
		Confidence: 0.9,
		Extract: func(m []string, now time.Time) (Resolution, bool) {
			h, min, ok := jaClock(m[2], m[3], m[4], m[5], m[6])
			if !ok {
				return Resolution{}, false
			}
			return ruleResolution(schedule.Rule{Frequency: schedule.FrequencyWeekly, Weekdays: jaWeekdaySet(m[1]), Hour: h, Minute: min})
		},
	},
	{
		// 毎月5日 / 毎月5日、20日
		Re:         regexp.MustCompile(`毎月((?:` + jaNum + `+日[、,，]?)+)\s*(?:` + jaClockFrag + `)?` + jaTail),
		Confidence: 0.9,
		Extract: func(m []string, now time.Time) (Resolution, bool) {
			days, ok := jaMonthDaySet(m[1])
			if !ok {
				return Resolution{}, false
			}
			h, min, ok := jaClock(m[2], m[3], m[4], m[5], m[6])
			if !ok {
				return Resolution{}, false
			}
			return ruleResolution(schedule.Rule{Frequency: schedule.FrequencyMonthly, MonthDays: days, Hour: h, Minute: min})
		},
	},
	{
		// 3日ごとに9時
		Re:         regexp.MustCompile(`(` + jaNum + `+)日(?:ごと|おき|毎)(?:に)?\s*(?:` + jaClockFrag + `)?` + jaTail),
		Confidence: 0.85,
		Extract: func(m []string, now time.Time) (Resolution, bool) {
			n, ok := parseNumber(m[1])
			if !ok {
				return Resolution{}, false
			}
			h, min, ok := jaClock(m[2], m[3], m[4], m[5], m[6])
			if !ok {
				return Resolution{}, false
			}
			return ruleResolution(schedule.Rule{Frequency: schedule.FrequencyEvery, IntervalDays: n, Hour: h, Minute: min})
		},
	},
}

var jaFuzzyHours = map[string][2]int{
	"朝":  {8, 0},
	"昼":  {12, 0},
	"正午": {12, 0},
	"夕方": {17, 0},
	"夜":  {20, 0},
	"深夜": {23, 0},
}

var jaFuzzy = []Pattern{
	{
		Re:         regexp.MustCompile(`(深夜|夕方|正午|朝|昼|夜)`),
		Confidence: 0.5,
		Extract: func(m []string, now time.Time) (Resolution, bool) {
			hm, ok := jaFuzzyHours[m[1]]
			if !ok {
				return Resolution{}, false
			}
			return Resolution{At: todayOrTomorrow(now, hm[0], hm[1])}, true
		},
	},
}
