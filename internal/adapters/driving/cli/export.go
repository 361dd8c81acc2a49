package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the knowledge base as JSON",
	Long:  "Writes every content item, with its full body, as a JSON document.",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	if transferService == nil {
		return errors.New("transfer service not configured")
	}

	out := cmd.OutOrStdout()
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close() //nolint:errcheck // Flushed before the deferred close
		out = f
	}

	report, err := transferService.Export(cmd.Context(), out)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	if exportOutput != "" {
		cmd.Printf("Exported %d items to %s\n", report.Items, exportOutput)
	}
	return nil
}
