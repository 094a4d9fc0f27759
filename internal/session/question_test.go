package session

import "testing"

func TestNormalizeLowercasesAndStripsWhitespace(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Paris", "paris"},
		{"paris ", "paris"},
		{"  New\tYork \n", "newyork"},
		{"4", "4"},
		{"", ""},
		{" \t\n", ""},
	}

	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{"Paris", "  mixed CASE  answer ", "ALREADYNORMAL", "42 is the answer", ""}
	for _, input := range inputs {
		once := Normalize(input)
		if twice := Normalize(once); twice != once {
			t.Fatalf("Normalize not idempotent for %q: %q != %q", input, twice, once)
		}
	}
}
