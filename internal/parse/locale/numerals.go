// internal/parse/locale/numerals.go
package locale

import "strconv"

var cjkDigits = map[rune]int{
	'〇': 0, '零': 0,
	'一': 1, '二': 2, '兩': 2, '両': 2, '三': 3, '四': 4,
	'五': 5, '六': 6, '七': 7, '八': 8, '九': 9,
	'０': 0, '１': 1, '２': 2, '３': 3, '４': 4,
	'５': 5, '６': 6, '７': 7, '８': 8, '９': 9,
}

// parseNumber reads an ASCII, full-width or CJK numeral token shared by both
// supported scripts. CJK parsing covers the positional 十 forms used in
// times and day-of-month values (十五 = 15, 三十一 = 31); larger numbers
// never appear in temporal expressions.
func parseNumber(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	value, cur := 0, 0
	seen := false
	for _, r := range s {
		if r == '十' {
			if cur == 0 {
				cur = 1
			}
			value += cur * 10
			cur = 0
			seen = true
			continue
		}
		d, ok := cjkDigits[r]
		if !ok {
			return 0, false
		}
		cur = cur*10 + d
		seen = true
	}
	if !seen {
		return 0, false
	}
	return value + cur, true
}
