package extract

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// DefaultPhoneticThreshold is the minimum Jaro-Winkler similarity a token
// must reach, in addition to sharing a Double Metaphone code, to match.
const DefaultPhoneticThreshold = 0.75

type phoneticTarget struct {
	canonical string
	primary   string
	secondary string
}

// PhoneticMatcher resolves tokens that sound like one of a small set of
// canonical words. It backs up the correction tables for variants the
// tables do not list.
type PhoneticMatcher struct {
	targets   []phoneticTarget
	threshold float64
}

// NewPhoneticMatcher builds a matcher for canonical words, tried in order.
func NewPhoneticMatcher(threshold float64, canonical ...string) *PhoneticMatcher {
	m := &PhoneticMatcher{threshold: threshold}
	for _, word := range canonical {
		p, s := matchr.DoubleMetaphone(word)
		m.targets = append(m.targets, phoneticTarget{canonical: word, primary: p, secondary: s})
	}
	return m
}

// Match returns the canonical word token sounds like.
func (m *PhoneticMatcher) Match(token string) (string, bool) {
	if m == nil {
		return "", false
	}
	token = strings.ToLower(strings.Trim(token, ".,!?'\""))
	if len(token) < 3 {
		return "", false
	}
	p, s := matchr.DoubleMetaphone(token)
	for _, t := range m.targets {
		if token == t.canonical {
			return t.canonical, true
		}
		if !codesOverlap(p, s, t.primary, t.secondary) {
			continue
		}
		if matchr.JaroWinkler(token, t.canonical, false) >= m.threshold {
			return t.canonical, true
		}
	}
	return "", false
}

func codesOverlap(p1, s1, p2, s2 string) bool {
	if p1 == "" {
		return false
	}
	return p1 == p2 || (s2 != "" && p1 == s2) || (s1 != "" && (s1 == p2 || s1 == s2))
}
