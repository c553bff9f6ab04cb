// Package main provides the entry point for the Profile Builder API server and its tools.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "profile_api",
	Short: "Profile Builder HTTP API Server",
	Long:  "Profile Builder stores resume profiles, imports them from PDF resumes and renders tailored resumes and cover letters via REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
