package fields

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

const maxCamelWords = 4

var (
	nonLetters = regexp.MustCompile(`[^\p{L}]+`)

	// fileNameStoplist holds prefixes that mark a filename as carrying no name of its own.
	fileNameStoplist = []string{"Resume", "CV", "Updated", "RESUME", "updated"}

	// namePatterns are tried in order; the first pattern with a match wins.
	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`[A-Z][a-z]+ [A-Z][a-z]+`),                 // First Last
		regexp.MustCompile(`[A-Z][a-z]+ [A-Z]\.`),                     // First L.
		regexp.MustCompile(`[A-Z]\. [A-Z][a-z]+ [A-Z][a-z]+`),         // F. First Last
		regexp.MustCompile(`[A-Z][a-z]+ [A-Z][a-z]+ [A-Z][a-z]+`),     // First Middle Last
		regexp.MustCompile(`[A-Z][a-z]+ [A-Z][a-z]+-[A-Z][a-z]+`),     // First Last-Last
		regexp.MustCompile(`[A-Z][a-z]+-[A-Z][a-z]+ [A-Z][a-z]+`),     // First-Last Last
		regexp.MustCompile(`[A-Z]\. [A-Z][a-z]+ [A-Z]\. [A-Z][a-z]+`), // F. Last M. Last
	}
)

type fileNameRule struct {
	applies func(base string) bool
	extract func(base string) string
}

// fileNameRules are mutually exclusive: the first rule whose predicate holds decides,
// even when it produces nothing.
var fileNameRules = []fileNameRule{
	{
		applies: func(base string) bool { return strings.HasPrefix(base, "CV") },
		extract: func(base string) string {
			return splitCamel(lettersOnly(strings.TrimPrefix(base, "CV")), maxCamelWords)
		},
	},
	{
		applies: func(base string) bool { return strings.HasPrefix(base, "Rozee") },
		extract: nameFromRozee,
	},
	{
		applies: func(base string) bool { return strings.HasPrefix(base, "Resume") },
		extract: func(base string) string {
			return splitCamel(lettersOnly(base[len("Resume"):]), maxCamelWords)
		},
	},
	{
		applies: func(base string) bool { return !hasStoplistPrefix(base) },
		extract: nameFromPlainFileName,
	},
}

// Name derives a person name for a resume, trying the filename first and the
// document text only when the filename yields nothing.
func Name(text, fileName string) (string, bool) {
	if name, ok := NameFromFileName(fileName); ok {
		return name, true
	}
	return NameFromText(text)
}

// NameFromFileName applies the filename marker rules.
func NameFromFileName(fileName string) (string, bool) {
	base := stripExtension(fileName)
	if base == "" {
		return "", false
	}
	for _, rule := range fileNameRules {
		if !rule.applies(base) {
			continue
		}
		name := strings.TrimSpace(rule.extract(base))
		return name, name != ""
	}
	return "", false
}

// NameFromText returns the first match of the first capitalisation pattern found in text.
func NameFromText(text string) (string, bool) {
	for _, pattern := range namePatterns {
		if match := pattern.FindString(text); match != "" {
			return match, true
		}
	}
	return "", false
}

func nameFromRozee(base string) string {
	tokens := strings.Split(base, "-")
	picked := make([]string, 0, 2)
	// tokens[0] is the marker itself.
	for i := len(tokens) - 1; i >= 1 && len(picked) < 2; i-- {
		if hasLetter(tokens[i]) {
			picked = append(picked, titleCase(tokens[i]))
		}
	}
	for i, j := 0, len(picked)-1; i < j; i, j = i+1, j-1 {
		picked[i], picked[j] = picked[j], picked[i]
	}
	return strings.Join(picked, " ")
}

func nameFromPlainFileName(base string) string {
	words := strings.Fields(nonLetters.ReplaceAllString(base, " "))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if isStoplistWord(w) {
			continue
		}
		out = append(out, capitalize(w))
	}
	return strings.Join(out, " ")
}

func stripExtension(fileName string) string {
	name := strings.TrimSpace(fileName)
	if idx := strings.LastIndexAny(name, `/\`); idx >= 0 {
		name = name[idx+1:]
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func hasStoplistPrefix(base string) bool {
	for _, stop := range fileNameStoplist {
		if strings.HasPrefix(base, stop) {
			return true
		}
	}
	return false
}

func isStoplistWord(word string) bool {
	for _, stop := range fileNameStoplist {
		if strings.EqualFold(word, stop) {
			return true
		}
	}
	return false
}

func lettersOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return r
		}
		return -1
	}, s)
}

// splitCamel inserts a space before each upper-case letter that follows a lower-case
// one, up to maxWords words; later boundaries are left joined.
func splitCamel(s string, maxWords int) string {
	var b strings.Builder
	words := 1
	var prev rune
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) && unicode.IsLower(prev) {
			words++
			if words <= maxWords {
				b.WriteByte(' ')
			}
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

func hasLetter(s string) bool {
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}

func titleCase(s string) string {
	var b strings.Builder
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}

func capitalize(word string) string {
	runes := []rune(strings.ToLower(word))
	if len(runes) == 0 {
		return ""
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
