package anime_test

import (
	"math"
	"testing"

	"github.com/animebridge/anime-proxy/internal/anime"
	"pgregory.net/rapid"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 1.0},
		{"abc", "", 0.0},
		{"", "abc", 0.0},
		{"one piece", "one piece", 1.0},
		{"kitten", "sitting", 1.0 - 3.0/7.0},
		{"café", "cafe", 0.75},
		{"abc", "xyz", 0.0},
	}

	for _, tt := range tests {
		if got := anime.Similarity(tt.a, tt.b); !approx(got, tt.want) {
			t.Fatalf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSimilarity_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.String().Draw(t, "a")
		b := rapid.String().Draw(t, "b")

		if got := anime.Similarity(a, a); got != 1.0 {
			t.Fatalf("Similarity(s, s) = %v", got)
		}
		ab, ba := anime.Similarity(a, b), anime.Similarity(b, a)
		if !approx(ab, ba) {
			t.Fatalf("not symmetric: %v vs %v", ab, ba)
		}
		if ab < 0 || ab > 1 {
			t.Fatalf("out of range: %v", ab)
		}
		if a != "" && anime.Similarity(a, "") != 0 {
			t.Fatalf("Similarity(s, \"\") must be 0 for non-empty s")
		}
	})
}
