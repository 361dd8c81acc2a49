package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var askHistoryLimit int

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the course material",
	Long: `Answers a question using the stored course content. Relevant lessons are
retrieved by semantic search and an answer is generated from them, with
links to the source pages and videos.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

var askHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently asked questions",
	RunE:  runAskHistory,
}

func init() {
	askHistoryCmd.Flags().IntVarP(&askHistoryLimit, "limit", "n", 10, "maximum number of entries")
	askCmd.AddCommand(askHistoryCmd)
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if askService == nil {
		return errors.New("ask service not configured")
	}

	answer, err := askService.Ask(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}

	cmd.Println(answer.Text)

	if len(answer.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, source := range answer.Sources {
			cmd.Printf("  - %s\n", source)
		}
	}
	return nil
}

func runAskHistory(cmd *cobra.Command, _ []string) error {
	if questionStore == nil {
		return errors.New("question store not configured")
	}

	logs, err := questionStore.RecentQuestions(cmd.Context(), askHistoryLimit)
	if err != nil {
		return fmt.Errorf("load question history: %w", err)
	}
	if len(logs) == 0 {
		cmd.Println("No questions asked yet.")
		return nil
	}

	for _, entry := range logs {
		cmd.Printf("[%s] %s\n", entry.AskedAt.Format("2006-01-02 15:04"), entry.Question)
		cmd.Printf("    %s\n", snippet(entry.Answer, 200))
		cmd.Println()
	}
	return nil
}
