package validators

import "testing"

func TestSanitizeString(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"trims whitespace", "  miscount after audit  ", 500, "miscount after audit"},
		{"caps length", "abcdef", 4, "abcd"},
		{"zero max keeps everything", "  hello  ", 0, "hello"},
		{"empty input", "   ", 500, ""},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeString(tc.input, tc.maxLen); got != tc.want {
				t.Fatalf("SanitizeString(%q, %d) = %q, want %q", tc.input, tc.maxLen, got, tc.want)
			}
		})
	}
}
