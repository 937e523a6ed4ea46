package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/animebridge/anime-proxy/cli/config"
	"github.com/animebridge/anime-proxy/internal/anime"
	"github.com/animebridge/anime-proxy/internal/upstream"
	"github.com/animebridge/anime-proxy/pkg/logger"
	"github.com/animebridge/anime-proxy/pkg/models"
	"github.com/spf13/cobra"
)

var (
	upstreamURL string
	rulesPath   string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [title or slug]",
	Short: "Resolve a title against the catalog",
	Long: `Run the title resolver in-process against the upstream catalog, without a
proxy server. Useful for checking how a title is matched.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadOrDefault()
		matcher, err := loadMatcher(cfg)
		if err != nil {
			return err
		}

		baseURL := upstreamURL
		if baseURL == "" {
			baseURL = cfg.Upstream.BaseURL
		}
		timeout, err := time.ParseDuration(cfg.Upstream.Timeout)
		if err != nil {
			timeout = 10 * time.Second
		}
		catalog := upstream.NewHTTPCatalog(baseURL, upstream.Options{Timeout: timeout}, logger.GetLogger())
		resolver := anime.NewResolver(catalog, matcher, logger.GetLogger())

		input := strings.Join(args, " ")
		title := anime.SearchTitle(input)

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		match, found, err := resolver.Resolve(ctx, title, title)
		if err != nil {
			return fmt.Errorf("upstream error: %w", err)
		}

		report := struct {
			Input  string               `json:"input"`
			Title  string               `json:"searchTitle"`
			Found  bool                 `json:"found"`
			Result *models.SearchResult `json:"result,omitempty"`
		}{Input: input, Title: title, Found: found}
		if found {
			report.Result = &match
		}

		if wantJSON(cmd) {
			return printJSON(cmd.OutOrStdout(), report)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Search title: %s\n", title)
		if !found {
			fmt.Fprintln(out, "No match found.")
			return nil
		}
		fmt.Fprintf(out, "Match: %s\n", match.Title)
		fmt.Fprintf(out, "ID: %s\n", match.ID)
		return nil
	},
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize [title or slug]",
	Short: "Show how a title is normalized",
	Long:  `Print the search title, significant words and special-case override for an input. Works offline.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		matcher, err := loadMatcher(config.LoadOrDefault())
		if err != nil {
			return err
		}

		input := strings.Join(args, " ")
		title := anime.SearchTitle(input)
		report := struct {
			Input       string              `json:"input"`
			SearchTitle string              `json:"searchTitle"`
			Slug        bool                `json:"slug"`
			Words       []string            `json:"significantWords"`
			SpecialCase []string            `json:"specialCaseQueries,omitempty"`
			Episode     *models.EpisodeInfo `json:"episode,omitempty"`
		}{
			Input:       input,
			SearchTitle: title,
			Slug:        anime.HasNumericSuffix(input),
			Words:       matcher.SignificantWords(title),
		}
		if report.Words == nil {
			report.Words = []string{}
		}
		if sc := matcher.SpecialCase(title); sc != nil {
			report.SpecialCase = sc.Queries
		}
		if info, ok := anime.ParseEpisodeSlug(input); ok {
			report.Episode = &info
		}

		if wantJSON(cmd) {
			return printJSON(cmd.OutOrStdout(), report)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Search title: %s\n", report.SearchTitle)
		fmt.Fprintf(out, "Slug: %v\n", report.Slug)
		fmt.Fprintf(out, "Significant words: %s\n", strings.Join(report.Words, ", "))
		if len(report.SpecialCase) > 0 {
			fmt.Fprintf(out, "Special case queries: %s\n", strings.Join(report.SpecialCase, ", "))
		}
		if report.Episode != nil {
			fmt.Fprintf(out, "Episode: %s #%d\n", report.Episode.AnimeID, report.Episode.EpisodeNumber)
		}
		return nil
	},
}

func init() {
	resolveCmd.Flags().StringVar(&upstreamURL, "upstream", "", "upstream catalog base URL")
	rootCmd.PersistentFlags().StringVar(&rulesPath, "rules", "", "YAML file overriding the matching rules")
}

func loadMatcher(cfg *config.Config) (*anime.Matcher, error) {
	path := rulesPath
	if path == "" {
		path = cfg.Rules.Path
	}
	if path == "" {
		return anime.NewMatcher(nil), nil
	}
	rules, err := anime.LoadRules(path)
	if err != nil {
		return nil, err
	}
	return anime.NewMatcher(rules), nil
}
