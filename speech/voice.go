package speech

import "strings"

// voiceTiers rank voices by name. A voice matching any needle of an earlier
// tier wins over every voice of a later tier.
var voiceTiers = [][]string{
	{"zira", "david", "mark", "hazel", "aria", "jenny", "guy", "nova", "neural", "enhanced"},
	{"premium", "natural", "microsoft", "wavenet", "standard"},
	{"samantha", "alex", "karen", "daniel", "fiona", "tessa", "serena", "amelie"},
}

var (
	femaleMarkers  = []string{"female", "woman"}
	lowQualityHint = []string{"robot", "synthetic", "compact", "basic"}
)

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func english(v Voice) bool {
	return strings.HasPrefix(strings.ToLower(v.Lang), "en")
}

// SelectBestVoice picks the most natural sounding voice: named neural or
// enhanced voices, then premium and vendor voices, then known quality voices,
// then English female voices, then any English voice without a low-quality
// marker, then the first voice. It reports false when voices is empty.
func SelectBestVoice(voices []Voice) (Voice, bool) {
	if len(voices) == 0 {
		return Voice{}, false
	}
	for _, tier := range voiceTiers {
		for _, v := range voices {
			if containsAny(strings.ToLower(v.Name), tier) {
				return v, true
			}
		}
	}
	for _, v := range voices {
		if english(v) && containsAny(strings.ToLower(v.Name), femaleMarkers) {
			return v, true
		}
	}
	for _, v := range voices {
		if english(v) && !containsAny(strings.ToLower(v.Name), lowQualityHint) {
			return v, true
		}
	}
	return voices[0], true
}
