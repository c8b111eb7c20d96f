package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the stored date-of-birth format.
const DateLayout = "2006-01-02"

const monthPattern = `(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sep|sept|oct|nov|dec)`

var months = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

type dateOrder int

const (
	orderDMY dateOrder = iota
	orderYMD
	orderMonthDY
	orderDMonthY
)

type datePattern struct {
	re    *regexp.Regexp
	order dateOrder
}

// Full dates, tried in order. Numeric dates are read day first.
var fullDatePatterns = []datePattern{
	{regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`), orderYMD},
	{regexp.MustCompile(`\b(\d{1,2})[\s\-/.](\d{1,2})[\s\-/.](\d{4}|\d{2})\b`), orderDMY},
	{regexp.MustCompile(`\b` + monthPattern + `\s+(?:the\s+)?(\d{1,2})\s*,?\s+(\d{4})\b`), orderMonthDY},
	{regexp.MustCompile(`\b(\d{1,2})\s+(?:of\s+)?` + monthPattern + `\s*,?\s+(\d{4})\b`), orderDMonthY},
}

var (
	monthDayPattern = regexp.MustCompile(`\b` + monthPattern + `\s+(?:the\s+)?(\d{1,2})\b`)
	dayMonthPattern = regexp.MustCompile(`\b(\d{1,2})\s+(?:of\s+)?` + monthPattern + `\b`)
	numericDayMonth = regexp.MustCompile(`^\D*?(\d{1,2})[\s\-/.](\d{1,2})\D*$`)
	yearOnlyPattern = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)

	agePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(\d{1,3})\s*(?:years?|yrs?)\s*old\b`),
		regexp.MustCompile(`\bage\s*(?:is\s*)?(\d{1,3})\b`),
		regexp.MustCompile(`\b(?:i\s+am|i'm|im)\s+(\d{1,3})\b`),
	}
)

// DateResult is the outcome of date-of-birth extraction. Exactly one of Date
// and YearOnly is set.
type DateResult struct {
	Date     time.Time
	YearOnly int
}

// ExtractDateOfBirth finds a birth date in text, reading numeric forms as
// day-month-year after converting spoken numerals. When pendingYear is set,
// a bare month and day completes the date. A lone year yields YearOnly.
func ExtractDateOfBirth(text string, pendingYear int, now time.Time) (DateResult, bool) {
	s := ConvertSpokenNumbers(text)

	for _, p := range fullDatePatterns {
		for _, m := range p.re.FindAllStringSubmatch(s, -1) {
			if d, ok := buildDate(m[1:], p.order, now); ok {
				return DateResult{Date: d}, true
			}
		}
	}

	if y := yearOnlyPattern.FindStringSubmatch(s); y != nil {
		year, _ := strconv.Atoi(y[1])
		if year <= now.Year() {
			// a year with a month and day but no recognised full form still counts
			if d, ok := monthDayWithYear(s, year, now); ok {
				return DateResult{Date: d}, true
			}
			return DateResult{YearOnly: year}, true
		}
	}

	if pendingYear > 0 {
		if d, ok := monthDayWithYear(s, pendingYear, now); ok {
			return DateResult{Date: d}, true
		}
	}
	return DateResult{}, false
}

func monthDayWithYear(s string, year int, now time.Time) (time.Time, bool) {
	y := strconv.Itoa(year)
	if m := monthDayPattern.FindStringSubmatch(s); m != nil {
		return buildDate([]string{m[1], m[2], y}, orderMonthDY, now)
	}
	if m := dayMonthPattern.FindStringSubmatch(s); m != nil {
		return buildDate([]string{m[1], m[2], y}, orderDMonthY, now)
	}
	if m := numericDayMonth.FindStringSubmatch(strings.Replace(s, y, "", 1)); m != nil {
		return buildDate([]string{m[1], m[2], y}, orderDMY, now)
	}
	return time.Time{}, false
}

func buildDate(parts []string, order dateOrder, now time.Time) (time.Time, bool) {
	var dayStr, monthStr, yearStr string
	switch order {
	case orderDMY:
		dayStr, monthStr, yearStr = parts[0], parts[1], parts[2]
	case orderYMD:
		yearStr, monthStr, dayStr = parts[0], parts[1], parts[2]
	case orderMonthDY:
		monthStr, dayStr, yearStr = parts[0], parts[1], parts[2]
	case orderDMonthY:
		dayStr, monthStr, yearStr = parts[0], parts[1], parts[2]
	}

	day, err := strconv.Atoi(dayStr)
	if err != nil {
		return time.Time{}, false
	}
	month, ok := months[monthStr]
	if !ok {
		n, err := strconv.Atoi(monthStr)
		if err != nil {
			return time.Time{}, false
		}
		month = time.Month(n)
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return time.Time{}, false
	}
	if len(yearStr) == 2 {
		year = expandTwoDigitYear(year, now)
	}

	if order == orderDMY && month > time.December && day >= 1 && day <= 12 {
		// unambiguous month-first input such as 12/25/1990
		day, month = int(month), time.Month(day)
	}
	if month < time.January || month > time.December || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || d.Month() != month {
		return time.Time{}, false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if d.After(today) || year < now.Year()-130 {
		return time.Time{}, false
	}
	return d, true
}

// expandTwoDigitYear places yy in the current century unless that would be
// in the future.
func expandTwoDigitYear(yy int, now time.Time) int {
	century := now.Year() / 100 * 100
	if century+yy > now.Year() {
		return century - 100 + yy
	}
	return century + yy
}

// AgeOn returns the completed years between dob and now.
func AgeOn(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}

// ExtractAge finds a stated age such as "35 years old", "age 35" or "I am 35".
func ExtractAge(text string) (int, bool) {
	s := ConvertSpokenNumbers(text)
	for _, re := range agePatterns {
		m := re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		age, err := strconv.Atoi(m[1])
		if err == nil && age > 0 && age <= 130 {
			return age, true
		}
	}
	return 0, false
}
