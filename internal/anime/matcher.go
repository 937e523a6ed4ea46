package anime

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/animebridge/anime-proxy/pkg/models"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// similarityTieWindow is how close two scores must be for the shorter title to win.
const similarityTieWindow = 0.1

var (
	seasonWordRe    = regexp.MustCompile(`\bseason (\d+)\b`)
	seasonOrdinalRe = regexp.MustCompile(`\b(\d+)(?:st|nd|rd|th) season\b`)
	seasonShortRe   = regexp.MustCompile(`\bs(\d+)\b`)
	trailingNumRe   = regexp.MustCompile(`(?:^| )(\d+)$`)
	ordinalTokenRe  = regexp.MustCompile(`^\d+(?:st|nd|rd|th)$`)
)

// Matcher picks the catalog entry that best fits a requested title. It holds
// no mutable state and is safe for concurrent use.
type Matcher struct {
	rules *Rules
}

func NewMatcher(rules *Rules) *Matcher {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Matcher{rules: rules}
}

func (m *Matcher) Rules() *Rules {
	return m.rules
}

type target struct {
	key    string
	stem   string
	season int
	arcs   []string
	words  []string
	tokens []string
}

func (m *Matcher) analyze(title string) target {
	key := comparisonKey(title)
	t := target{
		key:    key,
		stem:   comparisonKey(StripNumericSuffix(title)),
		season: targetSeason(key),
		tokens: strings.Fields(key),
	}
	t.words = m.significant(t.tokens)

	seen := map[string]bool{}
	for _, tok := range t.tokens {
		for _, kw := range m.rules.ArcKeywords {
			if tok == kw && !seen[kw] {
				seen[kw] = true
				t.arcs = append(t.arcs, kw)
			}
		}
	}
	return t
}

// SignificantWords returns the lowercased words of title that survive
// stop-word and length filtering, in order.
func (m *Matcher) SignificantWords(title string) []string {
	return m.significant(strings.Fields(comparisonKey(title)))
}

func (m *Matcher) significant(tokens []string) []string {
	var words []string
	for _, tok := range tokens {
		if utf8.RuneCountInString(tok) <= 2 || m.rules.IsStopWord(tok) || ordinalTokenRe.MatchString(tok) {
			continue
		}
		words = append(words, tok)
	}
	return words
}

// SpecialCase returns the override triggered by title, if any.
func (m *Matcher) SpecialCase(title string) *SpecialCase {
	return m.rules.SpecialCaseFor(comparisonKey(title))
}

// SelectBest applies the matching rules in order and returns the first
// candidate a rule settles on. ok is false when nothing fits; that is a
// normal outcome. candidates is never modified.
func (m *Matcher) SelectBest(candidates []models.SearchResult, targetTitle string) (models.SearchResult, bool) {
	if len(candidates) == 0 {
		return models.SearchResult{}, false
	}
	t := m.analyze(targetTitle)

	if sc := m.rules.SpecialCaseFor(t.key); sc != nil {
		for _, c := range candidates {
			if sc.Accepts(c.Title) {
				return c, true
			}
		}
	}

	for _, c := range candidates {
		if c.ID != "" && comparisonKey(StripNumericSuffix(c.ID)) == t.stem {
			return c, true
		}
	}

	for _, c := range candidates {
		if comparisonKey(c.Title) == t.key {
			return c, true
		}
	}

	if pool := m.seasonArcFilter(candidates, t); len(pool) > 0 {
		if c, ok := m.byWords(pool, t); ok {
			return c, true
		}
		return m.rank(pool, t), true
	}

	return m.byWords(candidates, t)
}

// FilterSeasonArc keeps the candidates carrying the season and arc markers
// of targetTitle. It returns nil when the target names neither.
func (m *Matcher) FilterSeasonArc(candidates []models.SearchResult, targetTitle string) []models.SearchResult {
	return m.seasonArcFilter(candidates, m.analyze(targetTitle))
}

// Verify rejects candidates that name a different season, miss a requested
// arc or miss any significant word of the target.
func (m *Matcher) Verify(c models.SearchResult, targetTitle string) bool {
	return m.verify(c, m.analyze(targetTitle))
}

func (m *Matcher) FilterVerified(candidates []models.SearchResult, targetTitle string) []models.SearchResult {
	t := m.analyze(targetTitle)
	var out []models.SearchResult
	for _, c := range candidates {
		if m.verify(c, t) {
			out = append(out, c)
		}
	}
	return out
}

// Rank returns the candidate most similar to targetTitle, preferring the
// shorter title among near ties.
func (m *Matcher) Rank(candidates []models.SearchResult, targetTitle string) (models.SearchResult, bool) {
	if len(candidates) == 0 {
		return models.SearchResult{}, false
	}
	return m.rank(candidates, m.analyze(targetTitle)), true
}

func (m *Matcher) verify(c models.SearchResult, t target) bool {
	k := comparisonKey(c.Title)
	if t.season > 0 {
		if seasons := candidateSeasons(k); len(seasons) > 0 && !containsInt(seasons, t.season) {
			return false
		}
	}
	for _, arc := range t.arcs {
		if !strings.Contains(k, arc) {
			return false
		}
	}
	for _, w := range t.words {
		if !containsWord(k, w) {
			return false
		}
	}
	return true
}

func (m *Matcher) seasonArcFilter(candidates []models.SearchResult, t target) []models.SearchResult {
	if t.season == 0 && len(t.arcs) == 0 {
		return nil
	}
	var out []models.SearchResult
	for _, c := range candidates {
		k := comparisonKey(c.Title)
		if t.season > 0 && !containsInt(candidateSeasons(k), t.season) {
			continue
		}
		matched := true
		for _, arc := range t.arcs {
			if !strings.Contains(k, arc) {
				matched = false
				break
			}
		}
		if matched {
			out = append(out, c)
		}
	}
	return out
}

func (m *Matcher) byWords(candidates []models.SearchResult, t target) (models.SearchResult, bool) {
	var containing []models.SearchResult
	for _, c := range candidates {
		k := comparisonKey(c.Title)
		all := true
		for _, w := range t.words {
			if !containsWord(k, w) {
				all = false
				break
			}
		}
		if all {
			containing = append(containing, c)
		}
	}
	if len(containing) > 0 {
		return m.rank(containing, t), true
	}
	return m.partial(candidates, t)
}

// partial tries the leading three, then two, significant words as a phrase,
// both as written in the target and with stop words dropped.
func (m *Matcher) partial(candidates []models.SearchResult, t target) (models.SearchResult, bool) {
	n := len(t.words)
	if n > 3 {
		n = 3
	}
	for ; n >= 2; n-- {
		phrases := phraseVariants(strings.Join(t.words[:n], " "))
		if prefix := m.prefixThrough(t.tokens, n); prefix != "" {
			phrases = append(phrases, phraseVariants(prefix)...)
		}

		var hits []models.SearchResult
		for _, c := range candidates {
			k := comparisonKey(c.Title)
			if containsAny(k, phrases) || containsAny(stripApostrophes(k), phrases) {
				hits = append(hits, c)
			}
		}
		if len(hits) > 0 {
			return m.rank(hits, t), true
		}
	}
	return models.SearchResult{}, false
}

// prefixThrough returns the target's leading tokens up to the n-th
// significant word, stop words included.
func (m *Matcher) prefixThrough(tokens []string, n int) string {
	seen := 0
	for i := range tokens {
		if len(m.significant(tokens[i:i+1])) == 1 {
			seen++
			if seen == n {
				return strings.Join(tokens[:i+1], " ")
			}
		}
	}
	return ""
}

type scored struct {
	candidate models.SearchResult
	score     float64
	length    int
}

func (m *Matcher) rank(candidates []models.SearchResult, t target) models.SearchResult {
	list := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		list = append(list, scored{
			candidate: c,
			score:     Similarity(comparisonKey(c.Title), t.key),
			length:    utf8.RuneCountInString(c.Title),
		})
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].score > list[j].score
	})

	best := list[0]
	for _, s := range list[1:] {
		if list[0].score-s.score > similarityTieWindow {
			break
		}
		if s.length < best.length {
			best = s
		}
	}
	return best.candidate
}

func targetSeason(key string) int {
	for _, re := range []*regexp.Regexp{seasonWordRe, seasonOrdinalRe, seasonShortRe} {
		if m := re.FindStringSubmatch(key); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return n
			}
		}
	}
	return 0
}

// candidateSeasons collects every season number a catalog title spells out,
// including a bare trailing number ("attack on titan 2").
func candidateSeasons(key string) []int {
	var seasons []int
	for _, re := range []*regexp.Regexp{seasonWordRe, seasonOrdinalRe, seasonShortRe, trailingNumRe} {
		for _, m := range re.FindAllStringSubmatch(key, -1) {
			if n, err := strconv.Atoi(m[1]); err == nil {
				seasons = append(seasons, n)
			}
		}
	}
	return seasons
}

// comparisonKey is the form titles are compared in: accents folded,
// lowercased, punctuation and hyphens as single spaces, apostrophes kept.
func comparisonKey(s string) string {
	s = strings.ToLower(foldAccents(apostropheReplacer.Replace(s)))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func containsWord(key, word string) bool {
	return strings.Contains(key, word) || strings.Contains(stripApostrophes(key), stripApostrophes(word))
}

func phraseVariants(phrase string) []string {
	return []string{phrase, stripApostrophes(phrase), strings.ReplaceAll(phrase, "'", "s")}
}

func stripApostrophes(s string) string {
	return strings.ReplaceAll(s, "'", "")
}

func containsInt(list []int, n int) bool {
	for _, v := range list {
		if v == n {
			return true
		}
	}
	return false
}
