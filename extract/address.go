package extract

import (
	"regexp"
	"strings"
)

var (
	streetWord    = regexp.MustCompile(`(?i)\b(?:street|avenue|ave|road|drive|boulevard|blvd|lane|place|court|way|circle|highway|parkway|apartment|apt|suite)\b`)
	namedStreet   = regexp.MustCompile(`\b([A-Z][a-z'\-]+)\s+(?i:street|avenue|road|drive|boulevard|lane|highway|parkway)\b`)
	addressIntent = regexp.MustCompile(`(?i)\b(?:my\s+(?:home\s+)?address|address\s+is|i\s+live\s+(?:at|on|in)|live\s+at)\b`)
	houseNumber   = regexp.MustCompile(`^\s*\d+[a-z]?\s+[a-z]`)
	anyDigit      = regexp.MustCompile(`\d`)
	addressFiller = regexp.MustCompile(`(?i)^\s*(?:(?:my\s+(?:home\s+)?address\s+is|the\s+address\s+is|address\s+is|i\s+live\s+(?:at|on|in)|it\s+is|it's)\s*[:,]?\s*)+`)
)

// MinAddressLength is the shortest accepted structured address.
const MinAddressLength = 6

// ExtractAddress accepts text as an address when it carries an address
// signal: an intent phrase, a named street such as "Elm Street", or any
// street-type word with a number. Words like "way" or "place" need a number
// unless the address was asked for, when a street word or a leading house
// number is enough.
func ExtractAddress(text string, asked bool) (string, bool) {
	street := streetWord.MatchString(text)
	gate := addressIntent.MatchString(text) ||
		namesStreet(text) ||
		(street && anyDigit.MatchString(text)) ||
		(asked && (street || houseNumber.MatchString(strings.ToLower(text))))
	if !gate {
		return "", false
	}
	addr := CleanAddress(text)
	if len(addr) < MinAddressLength {
		return "", false
	}
	return addr, true
}

var streetDeterminers = map[string]bool{
	"the": true, "this": true, "that": true, "my": true, "your": true, "our": true, "their": true,
}

// namesStreet reports whether a capitalized name precedes a street type.
func namesStreet(text string) bool {
	for _, m := range namedStreet.FindAllStringSubmatch(text, -1) {
		if !streetDeterminers[strings.ToLower(m[1])] {
			return true
		}
	}
	return false
}

// CleanAddress strips leading filler and trailing punctuation.
func CleanAddress(text string) string {
	addr := addressFiller.ReplaceAllString(text, "")
	return strings.Trim(strings.TrimSpace(addr), ".,!? ")
}
