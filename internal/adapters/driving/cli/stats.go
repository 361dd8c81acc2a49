package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge base statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	stats, err := knowledgeService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("read stats: %w", err)
	}

	cmd.Printf("Content items: %d\n", stats.ContentCount)
	cmd.Printf("Chunks:        %d\n", stats.ChunkCount)
	return nil
}
