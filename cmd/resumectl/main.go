package main

// Extract contact fields from local resumes:
//   go run ./cmd/resumectl extract ./inbox/*.pdf --out resumes.csv

import (
	"os"

	"github.com/spf13/cobra"

	"resume-extractor/internal/shared/telemetry"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "resumectl",
		Short:         "Extract contact details from PDF and DOCX resumes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newExtractCmd())
	return root
}

func main() {
	defer telemetry.Sync()
	if err := newRootCmd().Execute(); err != nil {
		telemetry.Error("resumectl.failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
