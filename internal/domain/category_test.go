package domain

import "testing"

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Running":            "running",
		"  Trail & Hiking  ": "trail-hiking",
		"Kids' Shoes!":       "kids-shoes",
		"--Basketball--2026": "basketball-2026",
		"":                   "",
		"Über Léger":         "ber-l-ger",
	}
	for in, want := range tests {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}
