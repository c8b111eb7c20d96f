package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	unitWords = map[string]int{
		"zero": 0, "oh": 0, "one": 1, "two": 2, "three": 3, "four": 4,
		"five": 5, "six": 6, "seven": 7, "eight": 8, "nine": 9,
	}
	teenWords = map[string]int{
		"ten": 10, "eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
		"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
	}
	tensWords = map[string]int{
		"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
		"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
	}
	ordinalWords = map[string]int{
		"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5, "sixth": 6,
		"seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10, "eleventh": 11, "twelfth": 12,
		"thirteenth": 13, "fourteenth": 14, "fifteenth": 15, "sixteenth": 16,
		"seventeenth": 17, "eighteenth": 18, "nineteenth": 19, "twentieth": 20, "thirtieth": 30,
	}

	wordHyphen     = regexp.MustCompile(`([a-z])-([a-z])`)
	ordinalSuffix  = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)\b`)
	spacedPunct    = regexp.MustCompile(`[,;:!?]`)
	collapseSpaces = regexp.MustCompile(`\s+`)
)

// ConvertSpokenNumbers lower-cases text and rewrites spoken numerals as digits.
// Compound forms are merged: "twenty one" becomes 21, "two thousand five"
// becomes 2005 and "nineteen ninety" becomes 1990. Ordinal suffixes on digits
// are dropped.
func ConvertSpokenNumbers(text string) string {
	tokens := tokenize(text)
	out := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); {
		if v, n := parseNumber(tokens, i); n > 0 {
			out = append(out, strconv.Itoa(v))
			i += n
			continue
		}
		out = append(out, tokens[i])
		i++
	}
	return ordinalSuffix.ReplaceAllString(strings.Join(out, " "), "$1")
}

// SpokenDigits lower-cases text and rewrites each single digit word as a digit
// without merging neighbours, which suits numbers read out one digit at a time.
func SpokenDigits(text string) string {
	tokens := tokenize(text)
	for i, tok := range tokens {
		if v, ok := unitWords[tok]; ok {
			tokens[i] = strconv.Itoa(v)
		}
	}
	return strings.Join(tokens, " ")
}

func tokenize(text string) []string {
	s := strings.ToLower(text)
	s = wordHyphen.ReplaceAllString(s, "$1 $2")
	s = spacedPunct.ReplaceAllString(s, " ")
	return strings.Fields(collapseSpaces.ReplaceAllString(s, " "))
}

// parseNumber reads the longest numeral starting at tokens[i] and returns its
// value and the number of tokens consumed, or 0 tokens when none starts there.
func parseNumber(tokens []string, i int) (int, int) {
	if v, n := parseYear(tokens, i); n > 0 {
		return v, n
	}
	return parseBelowThousand(tokens, i)
}

func parseYear(tokens []string, i int) (int, int) {
	// "two thousand [and] five"
	if lead, n := parseSmall(tokens, i); n > 0 && at(tokens, i+n) == "thousand" {
		value, used := lead*1000, n+1
		if at(tokens, i+used) == "and" {
			if rest, m := parseBelowThousand(tokens, i+used+1); m > 0 {
				return value + rest, used + 1 + m
			}
			return value, used
		}
		if rest, m := parseBelowThousand(tokens, i+used); m > 0 {
			return value + rest, used + m
		}
		return value, used
	}

	// "nineteen ninety [five]", "twenty twenty one", "nineteen oh five"
	century := 0
	switch at(tokens, i) {
	case "nineteen":
		century = 19
	case "twenty":
		century = 20
	default:
		return 0, 0
	}
	next := at(tokens, i+1)
	if tens, ok := tensWords[next]; ok {
		if unit, ok := unitWords[at(tokens, i+2)]; ok && unit > 0 {
			return century*100 + tens + unit, 3
		}
		return century*100 + tens, 2
	}
	if next == "oh" || next == "o" {
		if unit, ok := unitWords[at(tokens, i+2)]; ok && unit > 0 {
			return century*100 + unit, 3
		}
	}
	return 0, 0
}

func parseBelowThousand(tokens []string, i int) (int, int) {
	lead, n := parseSmall(tokens, i)
	if n == 0 {
		return 0, 0
	}
	if at(tokens, i+n) != "hundred" {
		return lead, n
	}
	value, used := lead*100, n+1
	j := i + used
	if at(tokens, j) == "and" {
		if rest, m := parseSmall(tokens, j+1); m > 0 {
			return value + rest, used + 1 + m
		}
		return value, used
	}
	if rest, m := parseSmall(tokens, j); m > 0 {
		return value + rest, used + m
	}
	return value, used
}

// parseSmall reads a numeral below one hundred, including ordinals.
func parseSmall(tokens []string, i int) (int, int) {
	tok := at(tokens, i)
	if tens, ok := tensWords[tok]; ok {
		next := at(tokens, i+1)
		if unit, ok := unitWords[next]; ok && unit > 0 {
			return tens + unit, 2
		}
		if ord, ok := ordinalWords[next]; ok && ord < 10 {
			return tens + ord, 2
		}
		return tens, 1
	}
	if v, ok := teenWords[tok]; ok {
		return v, 1
	}
	if v, ok := ordinalWords[tok]; ok {
		return v, 1
	}
	if tok == "oh" {
		return 0, 0
	}
	if v, ok := unitWords[tok]; ok {
		return v, 1
	}
	return 0, 0
}

func at(tokens []string, i int) string {
	if i < 0 || i >= len(tokens) {
		return ""
	}
	return tokens[i]
}
