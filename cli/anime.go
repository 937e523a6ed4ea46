package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/animebridge/anime-proxy/pkg/models"
	"github.com/spf13/cobra"
)

var episodeNumber int

var animeCmd = &cobra.Command{
	Use:   "anime",
	Short: "Query the anime proxy",
	Long:  `Search titles, list episodes and fetch streaming sources through a running proxy.`,
}

var animeSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search for an anime",
	Long:  `Resolve a title or slug and list its episodes.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		resp, err := apiGet(cmd.Context(), "/api/search?query="+url.QueryEscape(query))
		if err != nil {
			return err
		}
		if !resp.Success {
			fmt.Fprintf(cmd.OutOrStdout(), "No anime found for query: %s\n", query)
			return nil
		}
		return printEpisodes(cmd, resp.Data)
	},
}

var animeEpisodesCmd = &cobra.Command{
	Use:   "episodes [id]",
	Short: "List episodes",
	Long:  `List episodes for a catalog id, or for a slug ending in -<digits>.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := apiGet(cmd.Context(), "/api/"+url.PathEscape(args[0]))
		if err != nil {
			return err
		}
		return printEpisodes(cmd, resp.Data)
	},
}

var animeSourcesCmd = &cobra.Command{
	Use:   "sources [id]",
	Short: "Fetch streaming sources",
	Long:  `Fetch sources for an episode, either with --ep or an <id>-episode-<n> slug.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/api/sources/" + url.PathEscape(args[0])
		if episodeNumber > 0 {
			path += "?ep=" + strconv.Itoa(episodeNumber)
		}
		resp, err := apiGet(cmd.Context(), path)
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(cmd.OutOrStdout(), resp.Data)
		}

		var src models.EpisodeSources
		if err := json.Unmarshal(resp.Data, &src); err != nil {
			return fmt.Errorf("unexpected response: %w", err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (%s)\n", src.Title, src.ID)
		fmt.Fprintf(out, "Episode %d: %s\n", src.Episode.Number, src.Episode.Title)
		if src.Episode.JapaneseTitle != "" {
			fmt.Fprintf(out, "  %s\n", src.Episode.JapaneseTitle)
		}
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, src.Sources, "", "  "); err != nil {
			pretty.Reset()
			pretty.Write(src.Sources)
		}
		fmt.Fprintf(out, "\nSources:\n%s\n", pretty.String())
		return nil
	},
}

func init() {
	animeSourcesCmd.Flags().IntVar(&episodeNumber, "ep", 0, "episode number")

	animeCmd.AddCommand(animeSearchCmd)
	animeCmd.AddCommand(animeEpisodesCmd)
	animeCmd.AddCommand(animeSourcesCmd)
}

func printEpisodes(cmd *cobra.Command, data json.RawMessage) error {
	if wantJSON(cmd) {
		return printJSON(cmd.OutOrStdout(), data)
	}

	var anime models.AnimeEpisodes
	if err := json.Unmarshal(data, &anime); err != nil {
		return fmt.Errorf("unexpected response: %w", err)
	}
	out := cmd.OutOrStdout()
	if anime.Title != "" {
		fmt.Fprintf(out, "%s\n", anime.Title)
	}
	fmt.Fprintf(out, "ID: %v\n", anime.ID)
	fmt.Fprintf(out, "Episodes: %d\n\n", len(anime.Episodes))
	for _, ep := range anime.Episodes {
		fmt.Fprintf(out, "%4d. %s\n", ep.Number, ep.Title)
	}
	return nil
}

// apiGet calls the proxy and decodes its envelope. Non-2xx answers become
// errors carrying the proxy's message.
func apiGet(ctx context.Context, path string) (*models.APIResponse, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	base := strings.TrimRight(resolveServerURL(), "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+path, nil)
	if err != nil {
		return nil, err
	}
	client := http.Client{Timeout: 30 * time.Second}
	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("server connection error: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp models.APIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unexpected response (HTTP %d): %w", res.StatusCode, err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		if resp.Message == "" {
			resp.Message = res.Status
		}
		return nil, fmt.Errorf("request failed (HTTP %d): %s", res.StatusCode, resp.Message)
	}
	return &resp, nil
}
