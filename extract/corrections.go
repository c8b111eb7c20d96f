package extract

import (
	"regexp"
	"sort"
	"strings"
)

// Correction maps speech-to-text misrecognitions to the word that was meant.
type Correction struct {
	Canonical string
	Variants  []string
}

// GenderCorrections lists common misrecognitions of "male" and "female".
var GenderCorrections = []Correction{
	{Canonical: "female", Variants: []string{
		"femail", "femaile", "femal", "femeil", "femalle", "fimale", "feemale", "feemail",
		"femael", "femeale", "femaeel", "feemaile", "femaail", "femayel", "femayle",
		"phemale", "phemail",
	}},
	{Canonical: "male", Variants: []string{
		"mail", "maile", "mael", "maail", "mal", "mel", "meil", "maol", "meile", "mayl",
		"mayel", "malle", "malee", "maylee", "mayle", "maeal", "maaile", "maiil", "maill",
		"maale", "mahle", "myle", "maell", "maylle",
	}},
}

// MedicalCorrections fixes misspelled medical vocabulary and phone synonyms.
var MedicalCorrections = []Correction{
	{Canonical: "allergies", Variants: []string{"alergies"}},
	{Canonical: "allergy", Variants: []string{"alergy"}},
	{Canonical: "medicines", Variants: []string{"medecines"}},
	{Canonical: "medicine", Variants: []string{"medecine"}},
	{Canonical: "medications", Variants: []string{"medecations"}},
	{Canonical: "symptoms", Variants: []string{"symtoms"}},
	{Canonical: "symptom", Variants: []string{"symtom"}},
	{Canonical: "phone", Variants: []string{"telephone", "cell phone", "mobile"}},
}

// Replacement records a single correction applied to a text.
type Replacement struct {
	Heard     string
	Canonical string
}

type correctionRule struct {
	canonical string
	pattern   *regexp.Regexp
}

// Corrector applies a correction table with case-insensitive whole-word matching.
type Corrector struct {
	rules []correctionRule
}

func NewCorrector(table ...[]Correction) *Corrector {
	c := &Corrector{}
	for _, corrections := range table {
		for _, corr := range corrections {
			variants := append([]string(nil), corr.Variants...)
			// longest first so "cell phone" wins over a shorter overlapping variant
			sort.SliceStable(variants, func(i, j int) bool { return len(variants[i]) > len(variants[j]) })
			quoted := make([]string, len(variants))
			for i, v := range variants {
				quoted[i] = regexp.QuoteMeta(v)
			}
			c.rules = append(c.rules, correctionRule{
				canonical: corr.Canonical,
				pattern:   regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`),
			})
		}
	}
	return c
}

// Apply returns text with every variant replaced by its canonical word.
func (c *Corrector) Apply(text string) (string, []Replacement) {
	var applied []Replacement
	for _, rule := range c.rules {
		text = rule.pattern.ReplaceAllStringFunc(text, func(heard string) string {
			applied = append(applied, Replacement{Heard: heard, Canonical: rule.canonical})
			return rule.canonical
		})
	}
	return text, applied
}

var (
	genderCorrector  = NewCorrector(GenderCorrections)
	medicalCorrector = NewCorrector(MedicalCorrections)
)
