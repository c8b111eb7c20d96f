package extract

import (
	"regexp"
	"strings"

	"github.com/tbxark/voiceform/types"
)

// Field mentions, most specific first.
var fieldMentions = []struct {
	field types.FieldID
	re    *regexp.Regexp
}{
	{types.FieldEmergencyPhone, regexp.MustCompile(`\bemergency\s+(?:contact(?:'s)?\s+)?(?:phone|number)\b|\bcontact(?:'s)?\s+(?:phone|number)\b`)},
	{types.FieldEmergencyRelation, regexp.MustCompile(`\brelation(?:ship)?\b`)},
	{types.FieldEmergencyName, regexp.MustCompile(`\bemergency\s+contact\b|\bcontact(?:'s)?\s+name\b`)},
	{types.FieldLastName, regexp.MustCompile(`\b(?:last\s+name|surname|family\s+name)\b`)},
	{types.FieldFirstName, regexp.MustCompile(`\b(?:first\s+name|my\s+name|the\s+name|name)\b`)},
	{types.FieldDateOfBirth, regexp.MustCompile(`\b(?:date\s+of\s+birth|birth\s*day|birth\s+date|dob|age)\b`)},
	{types.FieldGender, regexp.MustCompile(`\bgender\b`)},
	{types.FieldCountryCode, regexp.MustCompile(`\bcountry\s+code\b`)},
	{types.FieldPhone, regexp.MustCompile(`\b(?:phone|number|mobile)\b`)},
	{types.FieldEmail, regexp.MustCompile(`\be-?mail\b`)},
	{types.FieldAddress, regexp.MustCompile(`\baddress\b`)},
	{types.FieldSymptoms, regexp.MustCompile(`\bsymptoms?\b`)},
	{types.FieldAllergies, regexp.MustCompile(`\ballerg(?:y|ies)\b`)},
	{types.FieldMedications, regexp.MustCompile(`\bmedications?\b|\bmedicines?\b`)},
	{types.FieldMedicalHistory, regexp.MustCompile(`\b(?:medical\s+)?history\b`)},
}

// MentionedField returns the form field text refers to, used when the user
// asks to change an answer.
func MentionedField(text string) (types.FieldID, bool) {
	s := strings.ToLower(text)
	for _, m := range fieldMentions {
		if m.re.MatchString(s) {
			return m.field, true
		}
	}
	return "", false
}

var complaintWords = map[string]bool{
	"no": true, "nope": true, "not": true, "wrong": true, "incorrect": true, "correct": true,
	"right": true, "change": true, "changed": true, "mistake": true, "mistaken": true, "error": true,
	"is": true, "are": true, "was": true, "were": true, "should": true, "be": true, "actually": true,
	"my": true, "the": true, "a": true, "an": true, "it": true, "it's": true, "its": true,
	"that": true, "that's": true, "to": true, "please": true, "need": true, "needs": true,
	"fix": true, "update": true, "spelled": true, "and": true, "but": true, "so": true,
	"oh": true, "um": true, "uh": true, "sorry": true, "also": true,
}

// CorrectionValue returns what follows the last mention of field in a
// correction request, without complaint words. "no, my address is wrong"
// yields "" and "my address is 42 Baker Street" yields "42 Baker Street".
func CorrectionValue(text string, field types.FieldID) string {
	var re *regexp.Regexp
	for _, m := range fieldMentions {
		if m.field == field {
			re = m.re
			break
		}
	}
	lower := strings.ToLower(text)
	if len(lower) != len(text) {
		text = lower
	}
	rest := text
	if re != nil {
		if locs := re.FindAllStringIndex(lower, -1); len(locs) > 0 {
			rest = text[locs[len(locs)-1][1]:]
		}
	}

	words := strings.Fields(rest)
	complaint := func(w string) bool {
		return complaintWords[strings.ToLower(strings.Trim(w, ".,;:!?\""))]
	}
	for len(words) > 0 && complaint(words[0]) {
		words = words[1:]
	}
	for len(words) > 0 && complaint(words[len(words)-1]) {
		words = words[:len(words)-1]
	}
	return strings.Trim(strings.Join(words, " "), " .,;:!?")
}
