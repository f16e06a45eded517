package extract

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)
	phonePattern = regexp.MustCompile(`\b\d{10}\b|\+\d{1,3}\s?\d{10}\b|\(\d{3}\)\s?\d{3}-\d{4}`)
)

// Info holds the contact details found in free text. Empty means absent.
type Info struct {
	Email string
	Phone string
	// Name is never inferred from free text; it is only collected when
	// the user is explicitly prompted for it.
	Name string
}

// Extract returns the first email-looking and phone-looking substrings of
// text. Matches are returned verbatim and are not validated.
func Extract(text string) Info {
	return Info{
		Email: emailPattern.FindString(text),
		Phone: phonePattern.FindString(text),
	}
}

var (
	bareID = regexp.MustCompile(`(?i)^[A-Z0-9]{6,}$`)

	// Ordered most to least specific; the first capture wins.
	idPhrases = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:my|the)\s+complaint\s+id\s+(?:is|was|:)?\s*([A-Z0-9]{6,})`),
		regexp.MustCompile(`(?i)status\s+of\s+complaint\s+id\s*[:=]?\s*([A-Z0-9]{6,})`),
		regexp.MustCompile(`(?i)complaint\s+number\s+([A-Z0-9]{6,})`),
		regexp.MustCompile(`(?i)complaint\s+(?:id\s*[:=]?\s*)?([A-Z0-9]{6,})`),
		regexp.MustCompile(`(?i)(?:id|complaint id)\s*[:=]?\s*([A-Z0-9]{6,})`),
	}

	idToken   = regexp.MustCompile(`(?i)\b([A-Z0-9]{6,})\b`)
	hasDigit  = regexp.MustCompile(`[0-9]`)
	hasLetter = regexp.MustCompile(`(?i)[A-Z]`)
)

var idStopWords = map[string]struct{}{
	"number":     {},
	"status":     {},
	"complaint":  {},
	"details":    {},
	"everywhere": {},
}

// ComplaintID finds a complaint identifier in text. It tries, in order:
// the whole trimmed text being ID-shaped, phrase patterns such as
// "my complaint id is X", and finally any standalone token of six or more
// alphanumerics that mixes letters and digits.
func ComplaintID(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if bareID.MatchString(trimmed) {
		return trimmed, true
	}

	for _, p := range idPhrases {
		if m := p.FindStringSubmatch(text); m != nil {
			return m[1], true
		}
	}

	for _, m := range idToken.FindAllStringSubmatch(text, -1) {
		candidate := m[1]
		if _, stop := idStopWords[strings.ToLower(candidate)]; stop {
			continue
		}
		if !hasDigit.MatchString(candidate) || !hasLetter.MatchString(candidate) {
			continue
		}
		return candidate, true
	}

	return "", false
}
