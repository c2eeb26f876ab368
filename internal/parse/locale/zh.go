// internal/parse/locale/zh.go
package locale

import (
	"regexp"
	"time"

	"reminder_bot/internal/domain/schedule"
)

// defaultHour is the time of day applied when a date, weekday or recurrence
// expression carries no explicit clock.
const defaultHour = 9

// chineseProvider handles Traditional Chinese input, accepting the
// Simplified variants of day/weekday tokens as well since users mix them.
type chineseProvider struct{}

// NewChinese returns the Traditional Chinese pattern provider.
func NewChinese() Provider { return chineseProvider{} }

func (chineseProvider) Tag() string          { return "zh-Hant" }
func (chineseProvider) Absolute() []Pattern  { return zhAbsolute }
func (chineseProvider) Relative() []Pattern  { return zhRelative }
func (chineseProvider) Recurring() []Pattern { return zhRecurring }
func (chineseProvider) Fuzzy() []Pattern     { return zhFuzzy }

func (chineseProvider) Messages() Messages {
	return Messages{
		DefaultLabel:     "提醒事項",
		TimeLayout:       "2006/01/02 15:04",
		CreatedOneShot:   "好的，我會在 %s 提醒你：%s",
		CreatedRecurring: "好的，已建立週期提醒（%s）：%s",
		FallbackNotice:   "我不太確定你指的時間，先幫你設在 %s：%s",
		Fired:            "⏰ 提醒：%s",
		ListHeader:       "你目前的提醒：",
		ListEmpty:        "目前沒有進行中的提醒。",
		Cancelled:        "已取消提醒:%s",
		NotFound:         "找不到這個提醒，它可能已經完成或被取消了。",
		CreateFailed:     "建立提醒時發生錯誤，請稍後再試一次。",
		CancelButton:     "取消",
		RestoreButton:    "復原",
		Reactivated:      "已重新啟用提醒：%s",
		Expired:          "這個提醒的時間已經過了，無法復原。",
		AdminHint:        "（管理員模式：可以取消任何人的提醒）",
		Help: "直接用一句話告訴我要提醒什麼，例如：\n" +
			"「明天8點吃藥」\n" +
			"「30分鐘後買東西」\n" +
			"「每週一9點開會」\n" +
			"輸入「清單」或「列表」可以查看目前的提醒。",
	}
}

func (chineseProvider) ListKeywords() []string {
	return []string{"列表", "清單", "提醒列表", "查看提醒"}
}

const (
	zhNum       = `[0-9０-９〇零一二三四五六七八九十]`
	zhClockFrag = `(?:(凌晨|早上|早晨|上午|中午|下午|傍晚|晚上)\s*)?(` + zhNum + `{1,3})[點点時时](?:(` + zhNum + `{1,2})分?|(半))?`
)

var zhWeekdayIndex = map[rune]int{
	'日': 0, '天': 0, '一': 1, '二': 2, '三': 3, '四': 4, '五': 5, '六': 6,
}

// zhShiftMeridiem moves an afternoon/evening hour into 24-hour form.
func zhShiftMeridiem(meridiem string, h int) int {
	switch meridiem {
	case "下午", "傍晚", "晚上":
		if h < 12 {
			h += 12
		}
	case "中午":
		if h < 11 {
			h += 12
		}
	}
	return h
}

// zhClock resolves the four clock-fragment submatch tokens. An absent
// fragment resolves to the locale default of 09:00; a present fragment with
// an out-of-range value is rejected so the next pattern can be tried.
func zhClock(meridiem, hourTok, minTok, halfTok string) (int, int, bool) {
	if hourTok == "" {
		return defaultHour, 0, true
	}
	h, m, ok := clockFromTokens(hourTok, minTok, halfTok)
	if !ok {
		return 0, 0, false
	}
	h = zhShiftMeridiem(meridiem, h)
	if !validClock(h, m) {
		return 0, 0, false
	}
	return h, m, true
}

func zhWeekdaySet(tokens string) []int {
	var days []int
	seen := make(map[int]bool)
	for _, r := range tokens {
		wd, ok := zhWeekdayIndex[r]
		if !ok {
			continue // list separator
		}
		if !seen[wd] {
			seen[wd] = true
			days = append(days, wd)
		}
	}
	return days
}

var zhMonthDayToken = regexp.MustCompile(`(` + zhNum + `+)[日號号]`)

func zhMonthDaySet(tokens string) ([]int, bool) {
	var days []int
	seen := make(map[int]bool)
	for _, m := range zhMonthDayToken.FindAllStringSubmatch(tokens, -1) {
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

var zhAbsolute = []Pattern{
	{
		// 2026年3月5日下午3點半
		Re:         regexp.MustCompile(`([0-9０-９]{4})年\s*(` + zhNum + `+)月(` + zhNum + `+)[日號号]\s*(?:` + zhClockFrag + `)?`),
		Confidence: 0.95,
		Extract: func(m []string, now time.Time) (Resolution, bool) {
			year, ok1 := parseNumber(m[1])
			month, ok2 := parseNumber(m[2])
			day, ok3 := parseNumber(m[3])
			h, min, ok4 := zhClock(m[4], m[5], m[6], m[7])
			if !ok1 || !ok2 || !ok3 || !ok4 {
				return Resolution{}, false
			}
			at, ok := yearDateInstant(now, year, month, day, h, min)
			return Resolution{At: at}, ok
		},
	},
	{
		// 3月5日8點, the next occurrence of that date
		Re:         regexp.MustCompile(`(` + zhNum + `+)月(` + zhNum + `+)[日號号]\s*(?:` + zhClockFrag + `)?`),
		Confidence: 0.9,
		Extract: func(m []string, now time.Time) (Resolution, bool) {
			month, ok1 := parseNumber(m[1])
			day, ok2 := parseNumber(m[2])
			h, min, ok3 := zhClock(m[3], m[4], m[5], m[6])
			if !ok1 || !ok2 || !ok3 {
				return Resolution{}, false
			}
			at, ok := monthDayInstant(now, month, day, h, min)
			return Resolution{At: at}, ok
		},
	},
	{
		// 8點 / 下午3點半 at the start of the message: today, or
		// tomorrow once the time has passed
		Re:         regexp.MustCompile(`^` + zhClockFrag),
		Confidence: 0.7,
		Extract: func(m []string, now time.Time) (Resolution, bool) {
			h, min, ok := clockFromTokens(m[2], m[3], m[4])
			if !ok {
				return Resolution{}, false
			}
			h = zhShiftMeridiem(m[1], h)
			if !validClock(h, min) {
				return Resolution{}, false
			}
			return Resolution{At: todayOrTomorrow(now, h, min)}, true
		},
	},
}

var zhRelative = []Pattern{
	{
		// 今天/明天/後天(+時間)
		Re:         regexp.MustCompile(`(大後天|大后天|後天|后天|今天|明天|明日)\s*(?:` + zhClockFrag + `)?`),
		Confidence: 0.9,
		Extract: func(m []string, now time.Time) (Resolution, bool) {
			offset := map[string]int{"今天": 0, "明天": 1, "明日": 1, "後天": 2, "后天": 2, "大後天": 3, "大后天": 3}[m[1]]
			if m[3] == "" {
				// No explicit clock: keep the current time of day on
				// the target date. "今天" alone names no instant.
				if offset == 0 {
					return Resolution{}, false
				}
				return Resolution{At: dayAt(now.AddDate(0, 0, offset), now.Hour(), now.Minute())}, true
			}
			h, min, ok := zhClock(m[2], m[3], m[4], m[5])
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
		// 下週五(+時間)
		Re:         regexp.MustCompile(`下(?:個|个)?(?:週|周|星期|禮拜|礼拜)([一二三四五六日天])\s*(?:` + zhClockFrag + `)?`),
		Confidence: 0.85,
		Extract: func(m []string, now time.Time) (Resolution, bool) {
			wd := zhWeekdayIndex[[]rune(m[1])[0]]
			h, min, ok := zhClock(m[2], m[3], m[4], m[5])
			if !ok {
				return Resolution{}, false
			}
			return Resolution{At: nextWeekday(now, wd, h, min)}, true
		},
	},
	{
		// 週五(+時間), guarded so 每週/下週 never match here
		Re:         regexp.MustCompile(`(?:^|[^每下])((?:週|周|星期|禮拜|礼拜)([一二三四五六日天])\s*(?:` + zhClockFrag + `)?)`),
		SpanGroup:  1,
		Confidence: 0.8,
		Extract: func(m []string, now time.Time) (Resolution, bool) {
			wd := zhWeekdayIndex[[]rune(m[2])[0]]
			h, min, ok := zhClock(m[3], m[4], m[5], m[6])
			if !ok {
				return Resolution{}, false
			}
			return Resolution{At: nextWeekday(now, wd, h, min)}, true
		},
	},
	{
		// 30分鐘後 / 2小時後 / 3天後
		Re:         regexp.MustCompile(`(` + zhNum + `+)\s*(分鐘|分钟|分|個小時|个小时|小時|小时|天)(?:之)?[後后]`),
		Confidence: 0.9,
		Extract: func(m []string, now time.Time) (Resolution, bool) {
			n, ok := parseNumber(m[1])
			if !ok || n < 1 {
				return Resolution{}, false
			}
			switch m[2] {
			case "分鐘", "分钟", "分":
				return Resolution{At: now.Add(time.Duration(n) * time.Minute)}, true
			case "天":
				return Resolution{At: now.AddDate(0, 0, n)}, true
			default:
				return Resolution{At: now.Add(time.Duration(n) * time.Hour)}, true
			}
		},
	},
}

var zhRecurring = []Pattern{
	{
		// 每天8點
		Re:         regexp.MustCompile(`(?:每天|每日)\s*(?:` + zhClockFrag + `)?`),
		Confidence: 0.9,
		Extract: func(m []string, now time.Time) (Resolution, bool) {
			h, min, ok := zhClock(m[1], m[2], m[3], m[4])
			if !ok {
				return Resolution{}, false
			}
			return ruleResolution(schedule.Rule{Frequency: schedule.FrequencyDaily, Hour: h, Minute: min})
		},
	},
	{
		// 每週一9點 / 每週一三五9點
		Re:         regexp.MustCompile(`每(?:週|周|星期|禮拜|礼拜)((?:[一二三四五六日天][、,，]?)+)\s*(?:` + zhClockFrag + `)?`),
		Confidence: 0.9,
		Extract: func(m []string, now time.Time) (Resolution, bool) {
			h, min, ok := zhClock(m[2], m[3], m[4], m[5])
			if !ok {
				return Resolution{}, false
			}
			return ruleResolution(schedule.Rule{Frequency: schedule.FrequencyWeekly, Weekdays: zhWeekdaySet(m[1]), Hour: h, Minute: min})
		},
	},
	{
		// 每月5號 / 每月5號、20號
		Re:         regexp.MustCompile(`每(?:個|个)?月((?:` + zhNum + `+[日號号][、,，]?)+)\s*(?:` + zhClockFrag + `)?`),
		Confidence: 0.9,
		Extract: func(m []string, now time.Time) (Resolution, bool) {
			days, ok := zhMonthDaySet(m[1])
			if !ok {
				return Resolution{}, false
			}
			h, min, ok := zhClock(m[2], m[3], m[4], m[5])
			if !ok {
				return Resolution{}, false
			}
			return ruleResolution(schedule.Rule{Frequency: schedule.FrequencyMonthly, MonthDays: days, Hour: h, Minute: min})
		},
	},
	{
		// 每3天9點
		Re:         regexp.MustCompile(`每(` + zhNum + `+)天\s*(?:` + zhClockFrag + `)?`),
		Confidence: 0.85,
		Extract: func(m []string, now time.Time) (Resolution, bool) {
			n, ok := parseNumber(m[1])
			if !ok {
				return Resolution{}, false
			}
			h, min, ok := zhClock(m[2], m[3], m[4], m[5])
			if !ok {
				return Resolution{}, false
			}
			return ruleResolution(schedule.Rule{Frequency: schedule.FrequencyEvery, IntervalDays: n, Hour: h, Minute: min})
		},
	},
}

var zhFuzzyHours = map[string][2]int{
	"凌晨": {6, 0},
	"早上": {8, 0},
	"早晨": {8, 0},
	"上午": {10, 0},
	"中午": {12, 0},
	"下午": {15, 0},
	"傍晚": {18, 0},
	"晚上": {20, 0},
	"深夜": {23, 0},
}

var zhFuzzy = []Pattern{
	{
		Re:         regexp.MustCompile(`(凌晨|早上|早晨|上午|中午|下午|傍晚|晚上|深夜)`),
		Confidence: 0.5,
		Extract: func(m []string, now time.Time) (Resolution, bool) {
			hm, ok := zhFuzzyHours[m[1]]
			if !ok {
				return Resolution{}, false
			}
			return Resolution{At: todayOrTomorrow(now, hm[0], hm[1])}, true
		},
	},
}

// ruleResolution validates a freshly extracted rule; structurally invalid
// rules reject the pattern instead of surfacing an error.
func ruleResolution(r schedule.Rule) (Resolution, bool) {
	if err := r.Validate(); err != nil {
		return Resolution{}, false
	}
	return Resolution{Rule: &r}, true
}
