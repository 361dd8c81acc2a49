package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all content from the knowledge base",
	RunE:  runClear,
}

func init() {
	clearCmd.Flags().BoolVar(&clearYes, "yes", false, "skip confirmation")
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, _ []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	if !clearYes {
		cmd.Print("This removes all stored content and chunks. Continue? [y/N]: ")
		var response string
		if _, err := fmt.Fscanln(cmd.InOrStdin(), &response); err != nil || (response != "y" && response != "Y") {
			cmd.Println("Aborted.")
			return nil
		}
	}

	if err := knowledgeService.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("clear knowledge base: %w", err)
	}

	cmd.Println("Knowledge base cleared.")
	return nil
}
