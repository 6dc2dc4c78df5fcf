package util

import "testing"

func TestExpandURL(t *testing.T) {
	pat := "https://www.flaticon.com/search?word={query}"
	got := ExpandURL(pat, map[string]string{"query": "red car"})
	want := "https://www.flaticon.com/search?word=red+car"
	if got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
	if got := ExpandURL("{unknown}/{query}", map[string]string{"query": "a&b"}); got != "{unknown}/a%26b" {
		t.Fatalf("unexpected: %q", got)
	}
	if ExpandURL("", map[string]string{"query": "x"}) != "" {
		t.Fatalf("expected empty for empty pattern")
	}
}
