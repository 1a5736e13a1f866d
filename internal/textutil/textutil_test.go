package textutil

import (
	"reflect"
	"testing"
)

func TestTokenizeFiltersShortTokens(t *testing.T) {
	got := Tokenize("Go is a Fast, compiled language!")
	want := []string{"fast", "compiled", "language"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize() = %v, want %v", got, want)
	}
}

func TestCountTermsTracksFirstSeen(t *testing.T) {
	tc := CountTerms("data systems and data pipelines and systems")
	if tc.Counts["data"] != 2 || tc.Counts["systems"] != 2 || tc.Counts["pipelines"] != 1 {
		t.Fatalf("unexpected counts: %v", tc.Counts)
	}
	if tc.FirstSeen["data"] >= tc.FirstSeen["systems"] {
		t.Fatalf("expected data before systems: %v", tc.FirstSeen)
	}
	want := []string{"data", "systems", "pipelines"}
	if !reflect.DeepEqual(tc.Order, want) {
		t.Fatalf("Order = %v, want %v", tc.Order, want)
	}
}

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"lecture: part 1/3", "lecture- part 1-3"},
		{"  what? ", "what"},
		{"plain", "plain"},
	}
	for _, tc := range cases {
		if got := SanitizeFileName(tc.in); got != tc.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
