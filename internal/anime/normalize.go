package anime

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/animebridge/anime-proxy/pkg/models"
)

var (
	numericSuffixRe  = regexp.MustCompile(`-\d+$`)
	episodeSlugRe    = regexp.MustCompile(`^(.*)-episode-(\d+)$`)
	tvTokenRe        = regexp.MustCompile(`(?i)-tv\b|\btv\b`)
	worldsRe         = regexp.MustCompile(`(?i)\bworlds\b`)
	worldApostropheS = regexp.MustCompile(`(?i)\bworld'S\b`)
	capitalSAfterApo = regexp.MustCompile(`(\w)'S\b`)
	whitespaceRe     = regexp.MustCompile(`\s+`)
	ordinalSeasonRe  = regexp.MustCompile(`(?i)\b(\d+)(?:st|nd|rd|th)[-\s]+season\b`)
	seasonNumberRe   = regexp.MustCompile(`(?i)\bseason[-\s]+(\d+)\b`)
)

var apostropheReplacer = strings.NewReplacer("’", "'", "‘", "'", "ʼ", "'", "`", "'")

// HasNumericSuffix reports whether s ends in -<digits>, the catalog id form.
func HasNumericSuffix(s string) bool {
	return numericSuffixRe.MatchString(s)
}

// StripNumericSuffix removes a trailing -<digits> catalog id.
func StripNumericSuffix(s string) string {
	return numericSuffixRe.ReplaceAllString(s, "")
}

// TitleFromSlug turns a catalog slug such as "one-piece-tv-100" into a
// search title ("One Piece").
func TitleFromSlug(slug string) string {
	return CleanQuery(StripNumericSuffix(slug))
}

// CleanQuery normalizes free text or an id-less slug into a search title.
// It never strips a numeric suffix; use TitleFromSlug for that.
func CleanQuery(raw string) string {
	s := strings.ReplaceAll(raw, "-", " ")
	s = tvTokenRe.ReplaceAllString(s, "")
	s = apostropheReplacer.Replace(s)
	s = worldsRe.ReplaceAllString(s, "world's")
	s = worldApostropheS.ReplaceAllString(s, "world's")
	s = strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
	s = FormatSeasonNumber(s)
	s = CapitalizeWords(s)
	s = capitalSAfterApo.ReplaceAllString(s, "${1}'s")
	return s
}

// FormatSeasonNumber rewrites "2nd season" and "season 2" as "Season 2".
// Every occurrence is rewritten, not only the first.
func FormatSeasonNumber(title string) string {
	title = ordinalSeasonRe.ReplaceAllString(title, "Season $1")
	return seasonNumberRe.ReplaceAllString(title, "Season $1")
}

// CapitalizeWords upper-cases the first letter of every word and leaves the
// rest untouched. A letter following an apostrophe does not start a word.
func CapitalizeWords(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prev := ' '
	for _, r := range s {
		if isWordRune(r) && !isWordRune(prev) && prev != '\'' {
			r = unicode.ToUpper(r)
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// ParseEpisodeSlug splits "<anime-id>-episode-<n>".
func ParseEpisodeSlug(slug string) (models.EpisodeInfo, bool) {
	m := episodeSlugRe.FindStringSubmatch(slug)
	if m == nil || m[1] == "" {
		return models.EpisodeInfo{}, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return models.EpisodeInfo{}, false
	}
	return models.EpisodeInfo{AnimeID: m[1], EpisodeNumber: n}, true
}
