package extract

import (
	"regexp"
	"sort"
	"strings"
)

var relationships = []string{
	"mother", "father", "parent", "spouse", "husband", "wife", "partner",
	"son", "daughter", "child", "brother", "sister", "sibling", "friend",
	"uncle", "aunt", "cousin", "grandmother", "grandfather", "grandma", "grandpa",
	"mom", "dad", "mama", "papa", "guardian",
}

var relationshipPattern = func() *regexp.Regexp {
	terms := append([]string(nil), relationships...)
	sort.SliceStable(terms, func(i, j int) bool { return len(terms[i]) > len(terms[j]) })
	return regexp.MustCompile(`\b(` + strings.Join(terms, "|") + `)\b`)
}()

// ExtractRelationship matches a kinship or relation term and capitalises it.
func ExtractRelationship(text string) (string, bool) {
	m := relationshipPattern.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return "", false
	}
	return capitalize(m[1]), true
}

// RawRelationship is the fallback label for an unmatched answer.
func RawRelationship(text string) string {
	return capitalize(strings.Trim(strings.TrimSpace(text), ".,!?"))
}
