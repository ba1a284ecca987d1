package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Operating Systems: Scheduling", "Operating Systems- Scheduling"},
		{"a/b\\c", "a-b-c"},
		{"what? <why> |how|", "what why how"},
		{"  padded  ", "padded"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := SanitizeFileName(tc.in); got != tc.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Quiz Prompt", "quiz_prompt"},
		{"hint-3", "hint-3"},
		{"***", "unknown"},
		{"", "unknown"},
	}
	for _, tc := range tests {
		if got := SanitizeToken(tc.in); got != tc.want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"this is a longer sentence", 10, "this is..."},
		{"abc", 2, "ab"},
		{"anything", 0, ""},
	}
	for _, tc := range tests {
		if got := Truncate(tc.in, tc.max); got != tc.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}
}
