package extract

import (
	"fmt"
	"regexp"
)

// Phone patterns tried in priority order against the digit-converted text.
var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`),
	regexp.MustCompile(`\b\d{10}\b`),
	regexp.MustCompile(`\(\d{3}\)\s*\d{3}[-.\s]?\d{4}`),
	regexp.MustCompile(`\b\d(?:\s+\d){9,12}\b`),
	regexp.MustCompile(`\b(\d{3})\s+(\d{3})\s+(\d{4})\b`),
	regexp.MustCompile(`\+?\b\d{11,13}\b`),
}

var nonDigit = regexp.MustCompile(`\D`)

// ExtractPhone finds a US phone number and formats it as XXX-XXX-XXXX.
// Numbers with a leading country code keep their last ten digits.
func ExtractPhone(text string) (string, bool) {
	s := SpokenDigits(text)
	for _, re := range phonePatterns {
		for _, match := range re.FindAllString(s, -1) {
			if phone, ok := FormatPhone(match); ok {
				return phone, true
			}
		}
	}
	return "", false
}

// FormatPhone strips everything but digits and formats ten or more digits.
func FormatPhone(raw string) (string, bool) {
	digits := nonDigit.ReplaceAllString(raw, "")
	if len(digits) < 10 {
		return "", false
	}
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	return fmt.Sprintf("%s-%s-%s", digits[:3], digits[3:6], digits[6:]), true
}
