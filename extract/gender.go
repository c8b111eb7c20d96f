package extract

import (
	"regexp"
	"strings"
)

const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

var (
	femaleWord = regexp.MustCompile(`\bfemale\b`)
	maleWord   = regexp.MustCompile(`\bmale\b`)
	otherWord  = regexp.MustCompile(`\b(?:other|non[\s\-]?binary|prefer\s+not)\b`)

	// accepted only when gender was the question
	genderLetter   = regexp.MustCompile(`^(?:(?:i\s+am|i'm|im|am|my\s+gender\s+is|gender\s+is|it's|its)\s+)?([mfo])\.?(?:\s|$)`)
	genderSentence = regexp.MustCompile(`^(?:i\s+am|i'm|im|am|my\s+gender\s+is|gender\s+is|it's|its)?\s*(male|female)\b`)
)

// GenderMatch is a recognised gender and, when the value was recovered from a
// misrecognition, the word that was actually heard.
type GenderMatch struct {
	Value string
	Heard string
}

var genderMatcher = NewPhoneticMatcher(DefaultPhoneticThreshold, GenderFemale, GenderMale)

// ExtractGender resolves male, female or other. The correction table is
// applied first. Single letters, short sentences and phonetic look-alikes are
// only accepted when asked is true.
func ExtractGender(text string, asked bool) (GenderMatch, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	corrected, replacements := genderCorrector.Apply(lower)
	heard := ""
	if len(replacements) > 0 {
		heard = replacements[0].Heard
	}

	switch {
	case femaleWord.MatchString(corrected):
		return GenderMatch{Value: GenderFemale, Heard: heardFor(replacements, GenderFemale)}, true
	case maleWord.MatchString(corrected):
		return GenderMatch{Value: GenderMale, Heard: heardFor(replacements, GenderMale)}, true
	case otherWord.MatchString(corrected):
		return GenderMatch{Value: GenderOther}, true
	}
	if !asked {
		return GenderMatch{}, false
	}

	trimmed := strings.Trim(corrected, " .!?")
	if m := genderLetter.FindStringSubmatch(trimmed); m != nil {
		switch m[1] {
		case "m":
			return GenderMatch{Value: GenderMale, Heard: heard}, true
		case "f":
			return GenderMatch{Value: GenderFemale, Heard: heard}, true
		default:
			return GenderMatch{Value: GenderOther}, true
		}
	}
	if m := genderSentence.FindStringSubmatch(trimmed); m != nil {
		return GenderMatch{Value: m[1]}, true
	}

	for _, tok := range strings.Fields(trimmed) {
		if v, ok := genderMatcher.Match(tok); ok {
			return GenderMatch{Value: v, Heard: strings.Trim(tok, ".,!?")}, true
		}
	}
	return GenderMatch{}, false
}

func heardFor(replacements []Replacement, canonical string) string {
	for _, r := range replacements {
		if r.Canonical == canonical {
			return r.Heard
		}
	}
	return ""
}
