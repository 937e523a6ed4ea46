package main

import (
	"os"

	"github.com/animebridge/anime-proxy/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
