package extract

import (
	"regexp"
	"strings"

	"github.com/tbxark/voiceform/types"
)

// NoneReported is the canned value stored for a negative medical answer.
var NoneReported = map[types.FieldID]string{
	types.FieldSymptoms:       "No specific symptoms reported",
	types.FieldAllergies:      "No known allergies",
	types.FieldMedications:    "No current medications",
	types.FieldMedicalHistory: "No significant medical history",
}

var medicalTriggers = map[types.FieldID]*regexp.Regexp{
	types.FieldSymptoms:       regexp.MustCompile(`pain|hurt|ache|sick|symptom|feel|fever|cough`),
	types.FieldAllergies:      regexp.MustCompile(`allerg|reaction`),
	types.FieldMedications:    regexp.MustCompile(`medication|medicine|pill|drug|taking|tablet|prescri`),
	types.FieldMedicalHistory: regexp.MustCompile(`surgery|operation|hospital|condition|medical history|diagnos`),
}

var (
	negativeAnswer = regexp.MustCompile(`^(?:no|none|nothing|nope|nah|not really|not that i know(?: of)?|i don't have any|i do not have any|i don't take any|n/?a)\b`)
	urgentWords    = regexp.MustCompile(`\b(?:urgent|emergency|severe|intense|critical)\b`)
)

// NormalizeMedical lower-cases text and fixes common medical misspellings.
func NormalizeMedical(text string) string {
	corrected, _ := medicalCorrector.Apply(strings.ToLower(strings.TrimSpace(text)))
	return corrected
}

// MentionsMedical reports whether text carries a keyword for field.
func MentionsMedical(field types.FieldID, text string) bool {
	re, ok := medicalTriggers[field]
	return ok && re.MatchString(NormalizeMedical(text))
}

// IsNegative reports whether text declines to give a value for field. A
// short "no ..." answer counts even when it names the field, as in
// "no known allergies"; a longer answer mentioning the field does not.
func IsNegative(field types.FieldID, text string) bool {
	s := NormalizeMedical(text)
	s = strings.Trim(s, " .!,")
	if !negativeAnswer.MatchString(s) {
		return false
	}
	if re, ok := medicalTriggers[field]; ok && re.MatchString(s) {
		return len(strings.Fields(s)) <= 4
	}
	return true
}

// IsUrgent reports whether text signals an urgent situation.
func IsUrgent(text string) bool {
	return urgentWords.MatchString(strings.ToLower(text))
}
