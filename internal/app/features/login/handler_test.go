package login

import "testing"

func TestSafeReturn(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"rooted path", "/events/abc", "/events/abc"},
		{"rooted with query", "/events?page=2", "/events?page=2"},
		{"whitespace trimmed", "  /profile  ", "/profile"},
		{"absolute URL rejected", "https://evil.example/", ""},
		{"schemeless URL rejected", "//evil.example/", ""},
		{"relative path rejected", "events", ""},
		{"backslash start rejected", `\evil`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeReturn(tt.in); got != tt.want {
				t.Errorf("SafeReturn(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
