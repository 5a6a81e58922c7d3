// Package main is the texforge CLI: builds the retrieval index, generates
// LaTeX documents, and serves the HTTP API.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/docly-ai/texforge/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "texforge",
	Short:         "Retrieval-augmented LaTeX document generator",
	Long:          "texforge builds an embedding index over a LaTeX example corpus\nand generates new documents by retrieving similar examples and\nprompting an OpenAI-compatible model.",
	Version:       fmt.Sprintf("%s (commit %s, built %s)", version.Version, version.Commit, version.Date),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()

	rootCmd.AddCommand(buildCmd, generateCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
