package fields

import "testing"

func mustPhoneExtractor(t *testing.T, policy PhonePolicy) *PhoneExtractor {
	t.Helper()
	p, err := NewPhoneExtractor("PK", policy)
	if err != nil {
		t.Fatalf("NewPhoneExtractor: %v", err)
	}
	return p
}

func TestPhoneNormalizeIsIdempotent(t *testing.T) {
	for _, policy := range []PhonePolicy{PhonePolicyNormalize, PhonePolicyStrict} {
		p := mustPhoneExtractor(t, policy)
		first, ok := p.Normalize("+923001234567")
		if !ok || first != "+923001234567" {
			t.Fatalf("policy %s: expected +923001234567, got (%q, %v)", policy, first, ok)
		}
		second, ok := p.Normalize(first)
		if !ok || second != first {
			t.Fatalf("policy %s: expected idempotent result, got (%q, %v)", policy, second, ok)
		}
	}
}

func TestPhoneNormalizePrefixes(t *testing.T) {
	p := mustPhoneExtractor(t, PhonePolicyNormalize)

	tests := []struct {
		raw  string
		want string
	}{
		{raw: "+92 300 1234567", want: "+923001234567"},
		{raw: "0300-1234567", want: "+923001234567"},
		{raw: "92 300 1234567", want: "+923001234567"},
		{raw: "(0300) 123 4567", want: "+923001234567"},
	}
	for _, tt := range tests {
		got, ok := p.Normalize(tt.raw)
		if !ok || got != tt.want {
			t.Fatalf("Normalize(%q) = (%q, %v), want %q", tt.raw, got, ok, tt.want)
		}
	}
}

func TestPhoneStrictDiscardsForeignNumbers(t *testing.T) {
	text := "Tel: +1 650 253 0000"

	strict := mustPhoneExtractor(t, PhonePolicyStrict)
	if got, ok := strict.Extract(text); ok {
		t.Fatalf("strict policy should discard foreign number, got %q", got)
	}

	lenient := mustPhoneExtractor(t, PhonePolicyNormalize)
	got, ok := lenient.Extract(text)
	if !ok || got != "+16502530000" {
		t.Fatalf("normalize policy expected +16502530000, got (%q, %v)", got, ok)
	}
}

func TestPhoneExtractSkipsNonNumbers(t *testing.T) {
	p := mustPhoneExtractor(t, PhonePolicyNormalize)
	texts := []string{
		"Experience 2019 - 2021\nMobile: 0300-1234567\n",
		"Mobile: 0300 1234567 2 years experience",
		"2016 - 2020 0300-1234567",
		"Phone 0300-1234567 0321-7654321",
		"Contact +92 300 1234567 - 2021",
	}
	for _, text := range texts {
		got, ok := p.Extract(text)
		if !ok || got != "+923001234567" {
			t.Fatalf("%q: expected +923001234567, got (%q, %v)", text, got, ok)
		}
	}
	if _, ok := p.Extract("no digits here"); ok {
		t.Fatalf("expected no phone")
	}
}

func TestNewPhoneExtractorRejectsUnknownRegion(t *testing.T) {
	if _, err := NewPhoneExtractor("ZZ", PhonePolicyNormalize); err == nil {
		t.Fatalf("expected error for unknown region")
	}
}

func TestParsePhonePolicy(t *testing.T) {
	if got := ParsePhonePolicy(" STRICT "); got != PhonePolicyStrict {
		t.Fatalf("expected strict, got %s", got)
	}
	if got := ParsePhonePolicy("whatever"); got != PhonePolicyNormalize {
		t.Fatalf("expected normalize, got %s", got)
	}
}
