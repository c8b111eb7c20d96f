package extract

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	nameIntro   = regexp.MustCompile(`(?i)\b(?:my\s+(?:(?:first|last|family)\s+|sur)?name(?:\s+is|'s)|(?:first|last|family)\s+name\s+is|surname\s+is|i\s+am|i'm|call\s+me|this\s+is|it's|name\s+is)\s+`)
	nameStop    = regexp.MustCompile(`(?i)\s+(?:and|but|i\s+was|i\s+am|i'm|my)\s+|[,.;]`)
	nameNoise   = regexp.MustCompile(`(?i)\b(?:birth|born|phone|number|address|street|gender|years?|old|email)\b|\d`)
	nameToken   = regexp.MustCompile(`^[\p{L}][\p{L}'\-]*$`)
	nameSkipSet = map[string]bool{
		"the": true, "and": true, "or": true, "but": true, "a": true, "an": true,
		"hi": true, "hello": true, "hey": true, "yes": true, "yeah": true, "ok": true, "okay": true,
		"um": true, "uh": true, "so": true, "well": true, "please": true, "sure": true,
		"my": true, "name": true, "is": true, "am": true, "its": true, "it's": true, "i": true,
		"surname": true, "first": true, "last": true, "family": true,
		"mr": true, "mrs": true, "ms": true, "miss": true, "dr": true,
	}
)

// ExtractName splits an introduction into first and last name. Filler such as
// "my name is" is removed and stopwords or non-alphabetic tokens are dropped.
// The first remaining token is the first name, the rest form the last name.
func ExtractName(text string) (first, last string, ok bool) {
	candidate := text
	if loc := nameIntro.FindStringIndex(candidate); loc != nil {
		candidate = candidate[loc[1]:]
		if stop := nameStop.FindStringIndex(candidate); stop != nil {
			candidate = candidate[:stop[0]]
		}
	}
	if nameNoise.MatchString(candidate) {
		return "", "", false
	}

	var words []string
	for _, raw := range strings.Fields(candidate) {
		word := strings.Trim(raw, ".,!?\"")
		if len([]rune(word)) <= 1 || nameSkipSet[strings.ToLower(word)] || !nameToken.MatchString(word) {
			continue
		}
		words = append(words, capitalize(word))
	}
	if len(words) == 0 {
		return "", "", false
	}
	return words[0], strings.Join(words[1:], " "), true
}

func capitalize(word string) string {
	r := []rune(word)
	if len(r) == 0 {
		return word
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
