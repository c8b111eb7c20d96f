package extract

import (
	"regexp"
	"strings"
)

// Country is a resolved dialing code.
type Country struct {
	Code string
	Name string
}

var countryByCode = map[string]string{
	"+1":  "USA/Canada",
	"+44": "United Kingdom",
	"+91": "India",
	"+86": "China",
	"+81": "Japan",
	"+49": "Germany",
	"+33": "France",
	"+61": "Australia",
	"+55": "Brazil",
	"+7":  "Russia",
}

var countryNames = []struct {
	re      *regexp.Regexp
	country Country
}{
	{regexp.MustCompile(`\b(?:india|indian)\b`), Country{"+91", "India"}},
	{regexp.MustCompile(`\b(?:usa|u\.s\.a?\.?|america|american|united\s+states)\b`), Country{"+1", "USA"}},
	{regexp.MustCompile(`\b(?:uk|u\.k\.?|britain|british|england|united\s+kingdom)\b`), Country{"+44", "United Kingdom"}},
	{regexp.MustCompile(`\b(?:china|chinese)\b`), Country{"+86", "China"}},
	{regexp.MustCompile(`\b(?:japan|japanese)\b`), Country{"+81", "Japan"}},
	{regexp.MustCompile(`\b(?:germany|german)\b`), Country{"+49", "Germany"}},
	{regexp.MustCompile(`\b(?:france|french)\b`), Country{"+33", "France"}},
	{regexp.MustCompile(`\b(?:australia|australian)\b`), Country{"+61", "Australia"}},
	{regexp.MustCompile(`\b(?:brazil|brazilian)\b`), Country{"+55", "Brazil"}},
	{regexp.MustCompile(`\b(?:russia|russian)\b`), Country{"+7", "Russia"}},
}

var (
	plusCode      = regexp.MustCompile(`(?:\bplus\s*|\+\s*)(\d(?:\s?\d){0,2})\b`)
	bareCode      = regexp.MustCompile(`^\D*?(\d(?:\s?\d){0,2})\D*$`)
	countryIntent = regexp.MustCompile(`country\s+code|\bplus\b|\+`)
)

// MentionsCountryCode reports whether text talks about a dialing code.
func MentionsCountryCode(text string) bool {
	return countryIntent.MatchString(strings.ToLower(text))
}

// ExtractCountryCode resolves "plus N" or "+N" directly, then a country name
// or demonym. A bare one to three digit answer is accepted when asked.
// Spoken numerals are merged first, so "plus ninety one" is +91, and read
// digit by digit as a fallback.
func ExtractCountryCode(text string, asked bool) (Country, bool) {
	merged := ConvertSpokenNumbers(text)
	for _, s := range []string{merged, SpokenDigits(text)} {
		if m := plusCode.FindStringSubmatch(s); m != nil {
			return countryForCode(m[1]), true
		}
	}
	for _, c := range countryNames {
		if c.re.MatchString(merged) {
			return c.country, true
		}
	}
	if asked && !hasNumberWord(merged) {
		if m := bareCode.FindStringSubmatch(merged); m != nil {
			return countryForCode(m[1]), true
		}
	}
	return Country{}, false
}

// hasNumberWord reports whether a numeral survived conversion, which means
// the digits left in s are only part of what was said.
func hasNumberWord(s string) bool {
	for _, tok := range strings.Fields(s) {
		if tok == "oh" {
			continue
		}
		_, unit := unitWords[tok]
		_, teen := teenWords[tok]
		_, tens := tensWords[tok]
		if unit || teen || tens || tok == "hundred" || tok == "thousand" {
			return true
		}
	}
	return false
}

func countryForCode(digits string) Country {
	code := "+" + strings.ReplaceAll(digits, " ", "")
	name, ok := countryByCode[code]
	if !ok {
		name = "your country"
	}
	return Country{Code: code, Name: name}
}
