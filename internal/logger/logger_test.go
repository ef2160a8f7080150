package logger

import "testing"

func TestTruncateForLog(t *testing.T) {
	cases := []struct {
		name  string
		input string
		limit int
		want  string
	}{
		{name: "short stays intact", input: "hello", limit: 10, want: "hello"},
		{name: "exact limit stays intact", input: "hello", limit: 5, want: "hello"},
		{name: "long is truncated", input: "hello world", limit: 5, want: "hello..."},
		{name: "zero limit empties", input: "hello", limit: 0, want: ""},
		{name: "whitespace trimmed first", input: "  hi  ", limit: 10, want: "hi"},
		{name: "multibyte runes", input: "приветствие", limit: 6, want: "привет..."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TruncateForLog(tc.input, tc.limit); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestNew(t *testing.T) {
	for _, json := range []bool{true, false} {
		logger, err := New(json, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if logger == nil {
			t.Fatalf("expected a logger")
		}
	}
}
