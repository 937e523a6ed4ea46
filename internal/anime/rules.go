package anime

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// SpecialCase overrides matching for a title the catalog spells inconsistently.
type SpecialCase struct {
	Triggers []string      `yaml:"triggers"`
	Accept   []string      `yaml:"accept"`
	Queries  []string      `yaml:"queries"`
	Arcs     []SpecialCase `yaml:"arcs"`
}

// Rules is the tunable data behind matching. It is read-only once loaded.
type Rules struct {
	SpecialCases []SpecialCase `yaml:"special_cases"`
	StopWords    []string      `yaml:"stop_words"`
	ArcKeywords  []string      `yaml:"arc_keywords"`

	stopSet map[string]struct{}
}

func DefaultRules() *Rules {
	rules, err := ParseRules(defaultRulesYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded rules are invalid: %v", err))
	}
	return rules
}

// LoadRules reads a YAML rules file. Sections left empty in the file keep
// their built-in values.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	rules, err := ParseRules(data)
	if err != nil {
		return nil, err
	}

	defaults := DefaultRules()
	if len(rules.SpecialCases) == 0 {
		rules.SpecialCases = defaults.SpecialCases
	}
	if len(rules.StopWords) == 0 {
		rules.StopWords = defaults.StopWords
	}
	if len(rules.ArcKeywords) == 0 {
		rules.ArcKeywords = defaults.ArcKeywords
	}
	rules.index()
	return rules, nil
}

func ParseRules(data []byte) (*Rules, error) {
	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}
	for i := range rules.SpecialCases {
		if err := rules.SpecialCases[i].normalize(); err != nil {
			return nil, fmt.Errorf("special case %d: %w", i, err)
		}
	}
	for i, w := range rules.StopWords {
		rules.StopWords[i] = strings.ToLower(strings.TrimSpace(w))
	}
	for i, w := range rules.ArcKeywords {
		rules.ArcKeywords[i] = strings.ToLower(strings.TrimSpace(w))
	}
	rules.index()
	return &rules, nil
}

func (r *Rules) index() {
	r.stopSet = make(map[string]struct{}, len(r.StopWords))
	for _, w := range r.StopWords {
		r.stopSet[w] = struct{}{}
	}
}

func (r *Rules) IsStopWord(word string) bool {
	_, ok := r.stopSet[word]
	return ok
}

// SpecialCaseFor returns the override that applies to a comparison key, or
// nil. Arc sub-tables are consulted before the franchise entry itself.
func (r *Rules) SpecialCaseFor(key string) *SpecialCase {
	for i := range r.SpecialCases {
		if sc := r.SpecialCases[i].lookup(key); sc != nil {
			return sc
		}
	}
	return nil
}

func (sc *SpecialCase) lookup(key string) *SpecialCase {
	if !containsAny(key, sc.Triggers) {
		return nil
	}
	for i := range sc.Arcs {
		if arc := sc.Arcs[i].lookup(key); arc != nil {
			return arc
		}
	}
	if len(sc.Accept) == 0 {
		return nil
	}
	return sc
}

// Accepts reports whether a catalog title satisfies the override. Titles
// are compared with and without apostrophes.
func (sc *SpecialCase) Accepts(title string) bool {
	k := comparisonKey(title)
	return containsAny(k, sc.Accept) || containsAny(strings.ReplaceAll(k, "'", ""), sc.Accept)
}

func (sc *SpecialCase) normalize() error {
	if len(sc.Triggers) == 0 {
		return fmt.Errorf("no triggers")
	}
	for i, t := range sc.Triggers {
		sc.Triggers[i] = comparisonKey(t)
	}
	for i, a := range sc.Accept {
		sc.Accept[i] = comparisonKey(a)
	}
	if len(sc.Queries) == 0 && len(sc.Accept) > 0 {
		sc.Queries = append([]string(nil), sc.Triggers...)
	}
	for i := range sc.Arcs {
		if err := sc.Arcs[i].normalize(); err != nil {
			return fmt.Errorf("arc %d: %w", i, err)
		}
	}
	return nil
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
