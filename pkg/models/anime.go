package models

import "encoding/json"

// SearchResult is one entry of the upstream catalog's search results.
type SearchResult struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type Episode struct {
	ID            string `json:"id"`
	Number        int    `json:"number"`
	Title         string `json:"title"`
	JapaneseTitle string `json:"japaneseTitle"`
}

// EpisodeInfo is parsed from a slug of the form <anime-id>-episode-<n>.
type EpisodeInfo struct {
	AnimeID       string `json:"animeId"`
	EpisodeNumber int    `json:"episodeNumber"`
}

type SearchEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		Results []SearchResult `json:"results"`
	} `json:"data"`
}

type EpisodesEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		Episodes []Episode `json:"episodes"`
	} `json:"data"`
}

// SourcesEnvelope keeps the streaming payload opaque; it is passed through untouched.
type SourcesEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

type AnimeEpisodes struct {
	ID       interface{} `json:"id"`
	Title    string      `json:"title,omitempty"`
	Episodes []Episode   `json:"episodes"`
}

type EpisodeSummary struct {
	Number        int    `json:"number"`
	Title         string `json:"title"`
	JapaneseTitle string `json:"japaneseTitle"`
}

type EpisodeSources struct {
	ID      string          `json:"id"`
	Title   string          `json:"title"`
	Episode EpisodeSummary  `json:"episode"`
	Sources json.RawMessage `json:"sources"`
}

// APIResponse is the envelope every proxy endpoint answers with.
type APIResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}
