package fields

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// PhonePolicy selects how candidates are normalised before they are accepted.
type PhonePolicy string

const (
	// PhonePolicyNormalize rewrites "0..." and bare "<cc>..." prefixes to "+<cc>..." and
	// accepts any number valid in the numbering plan.
	PhonePolicyNormalize PhonePolicy = "normalize"
	// PhonePolicyStrict accepts only numbers whose E.164 form carries the region's
	// country code; everything else is discarded.
	PhonePolicyStrict PhonePolicy = "strict"

	DefaultPhoneRegion = "PK"
)

var phoneCandidates = regexp.MustCompile(`\+?\d[\d \t\-().]{6,}\d`)

// digitGroups splits a candidate at its separators; a leading "+" stays with its group.
var digitGroups = regexp.MustCompile(`\+?\d+`)

// maxGroupsPerNumber bounds the sub-spans tried inside one candidate.
const maxGroupsPerNumber = 6

// ParsePhonePolicy maps a config value to a policy; unknown values fall back to normalize.
func ParsePhonePolicy(raw string) PhonePolicy {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(PhonePolicyStrict):
		return PhonePolicyStrict
	default:
		return PhonePolicyNormalize
	}
}

// PhoneExtractor recognises phone numbers for a single region.
type PhoneExtractor struct {
	region      string
	countryCode string
	policy      PhonePolicy
}

// NewPhoneExtractor builds an extractor for a CLDR region code such as "PK".
func NewPhoneExtractor(region string, policy PhonePolicy) (*PhoneExtractor, error) {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = DefaultPhoneRegion
	}
	code := phonenumbers.GetCountryCodeForRegion(region)
	if code == 0 {
		return nil, fmt.Errorf("unknown phone region %q", region)
	}
	if policy != PhonePolicyStrict {
		policy = PhonePolicyNormalize
	}
	return &PhoneExtractor{
		region:      region,
		countryCode: strconv.Itoa(code),
		policy:      policy,
	}, nil
}

// Policy reports the configured policy.
func (p *PhoneExtractor) Policy() PhonePolicy {
	return p.policy
}

// Extract returns the first accepted number in text, in E.164 form.
func (p *PhoneExtractor) Extract(text string) (string, bool) {
	for _, raw := range phoneCandidates.FindAllString(text, -1) {
		if phone, ok := p.Normalize(raw); ok {
			return phone, true
		}
		if phone, ok := p.extractSpan(raw); ok {
			return phone, true
		}
	}
	return "", false
}

// extractSpan retries a rejected candidate group by group. A candidate often swallows
// neighbouring digits (a year range, "2 years", a second number), so windows are tried
// from each starting group left to right, shortest first.
func (p *PhoneExtractor) extractSpan(raw string) (string, bool) {
	groups := digitGroups.FindAllStringIndex(raw, -1)
	if len(groups) < 2 {
		return "", false
	}
	for i := range groups {
		for j := i; j < len(groups) && j-i < maxGroupsPerNumber; j++ {
			if i == 0 && j == len(groups)-1 {
				continue
			}
			if phone, ok := p.Normalize(raw[groups[i][0]:groups[j][1]]); ok {
				return phone, true
			}
		}
	}
	return "", false
}

// Normalize converts a single candidate to E.164 or rejects it.
func (p *PhoneExtractor) Normalize(raw string) (string, bool) {
	candidate := strings.TrimSpace(raw)
	if p.policy == PhonePolicyNormalize {
		candidate = normalizePrefix(candidate, p.countryCode)
	}
	num, err := phonenumbers.Parse(candidate, p.region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", false
	}
	formatted := phonenumbers.Format(num, phonenumbers.E164)
	if p.policy == PhonePolicyStrict && !strings.HasPrefix(formatted, "+"+p.countryCode) {
		return "", false
	}
	return formatted, true
}

func normalizePrefix(raw, countryCode string) string {
	compact := strings.Map(func(r rune) rune {
		if r == '+' || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, raw)
	switch {
	case strings.HasPrefix(compact, "+"):
		return compact
	case strings.HasPrefix(compact, "00"):
		// international dialling prefix, left to the parser
		return compact
	case strings.HasPrefix(compact, "0"):
		return "+" + countryCode + compact[1:]
	case strings.HasPrefix(compact, countryCode):
		return "+" + compact
	default:
		return compact
	}
}
