package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/mehdi-lakhzouri/Backend-IA-Agent-Trello/internal/cli"
)

func main() {
	// Optional; real environments set the variables directly.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
