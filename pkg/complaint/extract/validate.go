package extract

import "regexp"

var (
	phoneSeparators = regexp.MustCompile(`[\s\-\(\)\.]`)
	localPhone      = regexp.MustCompile(`^\d{10}$`)
	intlPhone       = regexp.MustCompile(`^\+\d{1,3}\d{10}$`)
	emailShape      = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// ValidatePhone reports whether phone is a 10-digit number, optionally
// prefixed by "+" and a 1-3 digit country code. Spaces, dashes, dots and
// parentheses are ignored.
func ValidatePhone(phone string) bool {
	stripped := phoneSeparators.ReplaceAllString(phone, "")
	return localPhone.MatchString(stripped) || intlPhone.MatchString(stripped)
}

// ValidateEmail reports whether email has the local@domain.tld shape.
func ValidateEmail(email string) bool {
	return emailShape.MatchString(email)
}
