package generator

import "testing"

func TestPostProcessEnhanced(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  plain text \n", "plain text"},
		{"\"quoted\"", "quoted"},
		{"“curly”", "curly"},
		{"```\nfenced\n```", "fenced"},
		{"```text\nfenced with tag\n```", "fenced with tag"},
		{"\"a\" and \"b\"", "\"a\" and \"b\""},
	}
	for _, tc := range cases {
		got, err := PostProcessEnhanced(tc.in)
		if err != nil {
			t.Fatalf("PostProcessEnhanced(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("PostProcessEnhanced(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
	if _, err := PostProcessEnhanced("``````"); err == nil {
		t.Fatal("expected error for empty fence")
	}
}
