package anime_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/animebridge/anime-proxy/internal/anime"
)

func TestDefaultRules_SpecialCaseLookup(t *testing.T) {
	rules := anime.DefaultRules()

	sc := rules.SpecialCaseFor("shangri la frontier season 2")
	if sc == nil || len(sc.Queries) == 0 || sc.Queries[0] != "shangri" {
		t.Fatalf("expected shangri override, got %+v", sc)
	}

	arc := rules.SpecialCaseFor("demon slayer mugen train")
	if arc == nil || !arc.Accepts("Demon Slayer: Mugen Train Arc") {
		t.Fatalf("expected mugen train arc override, got %+v", arc)
	}

	if sc := rules.SpecialCaseFor("demon slayer season 2"); sc != nil {
		t.Fatalf("franchise entry without accept list must not apply on its own, got %+v", sc)
	}
	if sc := rules.SpecialCaseFor("naruto shippuden"); sc != nil {
		t.Fatalf("unexpected override %+v", sc)
	}
}

func TestSpecialCase_AcceptsApostropheVariants(t *testing.T) {
	sc := anime.DefaultRules().SpecialCaseFor("god's game we play")
	if sc == nil {
		t.Fatalf("expected gods game override")
	}
	for _, title := range []string{"The Gods' Game We Play", "God's Game We Play", "Kamigami no Asobi: Gods Game"} {
		if !sc.Accepts(title) {
			t.Fatalf("expected %q to be accepted", title)
		}
	}
	if sc.Accepts("Good Games") {
		t.Fatalf("unexpected acceptance")
	}
}

func TestDefaultRules_StopWords(t *testing.T) {
	rules := anime.DefaultRules()
	for _, w := range []string{"the", "arc", "saga", "part"} {
		if !rules.IsStopWord(w) {
			t.Fatalf("expected %q to be a stop word", w)
		}
	}
	if rules.IsStopWord("titan") {
		t.Fatalf("titan is not a stop word")
	}
}

func TestLoadRules_OverridesAndKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	data := []byte(`
special_cases:
  - triggers: ["frieren"]
    accept: ["sousou no frieren", "frieren"]
stop_words: ["the", "movie"]
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write rules: %v", err)
	}

	rules, err := anime.LoadRules(path)
	if err != nil {
		t.Fatalf("load rules: %v", err)
	}

	sc := rules.SpecialCaseFor("frieren beyond journey's end")
	if sc == nil || len(sc.Queries) != 1 || sc.Queries[0] != "frieren" {
		t.Fatalf("expected queries to default to triggers, got %+v", sc)
	}
	if rules.SpecialCaseFor("shangri la frontier") != nil {
		t.Fatalf("file special cases replace the built-in table")
	}
	if !rules.IsStopWord("movie") || rules.IsStopWord("arc") {
		t.Fatalf("stop words should come from the file")
	}
	if len(rules.ArcKeywords) == 0 {
		t.Fatalf("arc keywords should fall back to the built-in list")
	}

	m := anime.NewMatcher(rules)
	if got := m.SignificantWords("Frieren The Movie"); len(got) != 1 || got[0] != "frieren" {
		t.Fatalf("matcher should use loaded stop words, got %v", got)
	}
}

func TestLoadRules_Errors(t *testing.T) {
	if _, err := anime.LoadRules(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := anime.ParseRules([]byte("special_cases: [")); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := anime.ParseRules([]byte("special_cases:\n  - accept: [\"x\"]\n")); err == nil {
		t.Fatalf("expected error for special case without triggers")
	}
}
