package ui

import (
	"reflect"
	"testing"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"boundary", "bondary", 1},
		{"réglage", "reglage", 1},
	}
	for _, tt := range tests {
		if got := Distance(tt.a, tt.b); got != tt.want {
			t.Errorf("Distance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSuggest(t *testing.T) {
	candidates := []string{"boundary", "Boundaries", "material", "inlet", "bound"}

	got := Suggest("bondary", candidates)
	if len(got) == 0 || got[0] != "boundary" {
		t.Fatalf("expected boundary first, got %v", got)
	}
	for _, s := range got {
		if s == "material" || s == "inlet" {
			t.Errorf("unexpected suggestion %q", s)
		}
	}

	if got := Suggest("INLET", []string{"inlet"}); !reflect.DeepEqual(got, []string{"inlet"}) {
		t.Errorf("matching should ignore case, got %v", got)
	}
	if got := Suggest("inlet", []string{"inlet"}); len(got) != 0 {
		t.Errorf("exact name should not be suggested, got %v", got)
	}
}

func TestSuggestLimit(t *testing.T) {
	got := Suggest("a", []string{"b", "c", "d", "e", "f"})
	if len(got) != DefaultMaxSuggestions {
		t.Fatalf("expected %d suggestions, got %v", DefaultMaxSuggestions, got)
	}
	if !reflect.DeepEqual(got, []string{"b", "c", "d"}) {
		t.Errorf("ties should keep candidate order, got %v", got)
	}
}
