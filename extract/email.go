package extract

import (
	"regexp"
	"strings"
)

var (
	typedEmail   = regexp.MustCompile(`[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}`)
	spokenEmail  = regexp.MustCompile(`\b([a-z0-9_]+(?:\s+dot\s+[a-z0-9_]+)*)\s+at\s+([a-z0-9]+(?:\s+dot\s+[a-z0-9]+)+)\b`)
	spelledEmail = regexp.MustCompile(`\b((?:[a-z0-9_]\s+)+[a-z0-9_])\s+at\s+((?:[a-z0-9]\s+)*[a-z0-9](?:\s+dot\s+(?:[a-z0-9]\s+)*[a-z0-9])+)\b`)

	underscoreWord = regexp.MustCompile(`\s*\bunderscore\b\s*`)
	dotWord        = regexp.MustCompile(`\s+dot\s+`)
	emailSpaces    = regexp.MustCompile(`\s+`)
	emailHint      = regexp.MustCompile(`@|\bat\b.*\bdot\b`)
)

// ExtractEmail recognises a typed address, a spoken "name dot x at domain dot com"
// form, or a letter-by-letter spelling, in that order. "underscore" is
// accepted as a word.
func ExtractEmail(text string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(text))
	s = underscoreWord.ReplaceAllString(s, "_")

	if m := typedEmail.FindString(s); m != "" {
		return strings.TrimRight(m, "."), true
	}
	if m := spokenEmail.FindStringSubmatch(s); m != nil {
		if addr, ok := joinEmail(m[1], m[2]); ok {
			return addr, true
		}
	}
	if m := spelledEmail.FindStringSubmatch(s); m != nil {
		if addr, ok := joinEmail(m[1], m[2]); ok {
			return addr, true
		}
	}
	return "", false
}

// HasEmailHint reports whether text looks like it carries an email address.
func HasEmailHint(text string) bool {
	return emailHint.MatchString(strings.ToLower(text))
}

func joinEmail(local, domain string) (string, bool) {
	local = emailSpaces.ReplaceAllString(dotWord.ReplaceAllString(local, "."), "")
	domain = emailSpaces.ReplaceAllString(dotWord.ReplaceAllString(domain, "."), "")
	addr := local + "@" + domain
	if typedEmail.FindString(addr) != addr {
		return "", false
	}
	return addr, true
}
