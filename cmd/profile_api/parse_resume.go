package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/profile-builder/internal/ingestion"
	"github.com/jonathan/profile-builder/internal/llm"
	"github.com/jonathan/profile-builder/internal/observability"
)

var (
	parseVerbose bool
	parseNoLLM   bool
)

var parseResumeCmd = &cobra.Command{
	Use:   "parse-resume <file.pdf>",
	Short: "Parse a PDF resume into profile JSON",
	Long:  "Extract the text of a PDF resume and print the structured profile data the upload endpoint would return. Uses Gemini when GEMINI_API_KEY is set.",
	Args:  cobra.ExactArgs(1),
	RunE:  runParseResume,
}

func init() {
	parseResumeCmd.Flags().BoolVarP(&parseVerbose, "verbose", "v", false, "Print a readable summary to stderr")
	parseResumeCmd.Flags().BoolVar(&parseNoLLM, "no-llm", false, "Use only the heuristic parser")
	rootCmd.AddCommand(parseResumeCmd)
}

func runParseResume(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read resume: %w", err)
	}

	ctx := context.Background()
	var extractor ingestion.ProfileExtractor
	if !parseNoLLM {
		client, err := llm.NewClient(ctx, llm.DefaultConfig(), os.Getenv("GEMINI_API_KEY"))
		switch {
		case err == nil:
			defer func() { _ = client.Close() }()
			extractor = llm.NewAssistant(client)
		case !errors.Is(err, llm.ErrNotConfigured):
			return fmt.Errorf("failed to create LLM client: %w", err)
		}
	}

	text, err := ingestion.ExtractPDFText(data)
	if err != nil {
		return err
	}
	profileData, source := ingestion.NewImporter(extractor, nil).ParseText(ctx, text)

	if parseVerbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "Parsed with %s parser\n", source)
		printer := observability.NewPrinter(cmd.ErrOrStderr())
		printer.PrintProfileData(profileData)
		counts := profileData.Counts()
		printer.PrintImportSummary(&counts)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(profileData)
}
