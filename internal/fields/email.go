package fields

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)

// Email returns the first address found in text, lower-cased. A truncated
// "gmail.co" suffix, a common text-layer artefact, is repaired to "gmail.com".
func Email(text string) (string, bool) {
	match := emailPattern.FindString(text)
	if match == "" {
		return "", false
	}
	email := strings.ToLower(match)
	if strings.HasSuffix(email, "gmail.co") {
		email += "m"
	}
	return email, true
}
