package fields

import "testing"

func TestEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{name: "lower cases", text: "Contact: JOHN@EXAMPLE.COM", want: "john@example.com", wantOK: true},
		{name: "repairs gmail.co", text: "mail user@gmail.co today", want: "user@gmail.com", wantOK: true},
		{name: "keeps gmail.com", text: "user@gmail.com.", want: "user@gmail.com", wantOK: true},
		{name: "first wins", text: "a.b-c@corp.pk and x@y.com", want: "a.b-c@corp.pk", wantOK: true},
		{name: "none", text: "no address here @ all", want: "", wantOK: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Email(tt.text)
			if got != tt.want || ok != tt.wantOK {
				t.Fatalf("Email(%q) = (%q, %v), want (%q, %v)", tt.text, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
