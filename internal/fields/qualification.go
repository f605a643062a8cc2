package fields

import "regexp"

// QualificationNone is the label used when no rule matches.
const QualificationNone = "None"

type qualificationRule struct {
	label string
	match func(text string) bool
}

// qualificationRules are evaluated in order. Conjunctions come before the single
// keyword rules they overlap with.
var qualificationRules = []qualificationRule{
	{label: "Digital Marketer + FB Ads", match: allOf("Digital Marketer", "FB Ads")},
	{label: "Digital Marketer + SEO", match: allOf("Digital Marketer", "SEO")},
	{label: "Social Media Manager + FB Ads", match: allOf("Social Media Manager", "FB Ads")},
	{label: "SEO + Content Writer", match: allOf("SEO", "Content Writer")},
	{label: "Digital Marketer", match: anyOf("Digital Marketer", "Digital Marketing")},
	{label: "Social Media Manager", match: anyOf("Social Media Manager", "Social Media Marketing")},
	{label: "FB Ads", match: anyOf("FB Ads", "Facebook Ads")},
	{label: "Google Ads", match: anyOf("Google Ads")},
	{label: "SEO", match: anyOf("SEO")},
	{label: "Content Writer", match: anyOf("Content Writer", "Content Writing")},
	{label: "Email Marketing", match: anyOf("Email Marketing")},
	{label: "Graphic Designer", match: anyOf("Graphic Designer")},
}

// Qualification classifies text into a fixed label, or QualificationNone.
func Qualification(text string) string {
	for _, rule := range qualificationRules {
		if rule.match(text) {
			return rule.label
		}
	}
	return QualificationNone
}

// QualificationLabels lists every label Qualification can return, in rule order.
func QualificationLabels() []string {
	out := make([]string, 0, len(qualificationRules)+1)
	for _, rule := range qualificationRules {
		out = append(out, rule.label)
	}
	return append(out, QualificationNone)
}

func allOf(keywords ...string) func(string) bool {
	patterns := compileKeywords(keywords)
	return func(text string) bool {
		for _, p := range patterns {
			if !p.MatchString(text) {
				return false
			}
		}
		return true
	}
}

func anyOf(keywords ...string) func(string) bool {
	patterns := compileKeywords(keywords)
	return func(text string) bool {
		for _, p := range patterns {
			if p.MatchString(text) {
				return true
			}
		}
		return false
	}
}

func compileKeywords(keywords []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(keywords))
	for _, kw := range keywords {
		out = append(out, regexp.MustCompile(`\b`+regexp.QuoteMeta(kw)+`\b`))
	}
	return out
}
