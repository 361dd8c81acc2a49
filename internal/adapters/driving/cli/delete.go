package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/minerva-edu/tutor-cli/internal/core/domain"
)

var (
	deleteChapter string
	deleteLesson  string
	deleteTitle   string
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a content item",
	Long:  "Removes a content item and all of its chunks from the knowledge base.",
	RunE:  runDelete,
}

func init() {
	deleteCmd.Flags().StringVar(&deleteChapter, "chapter", "", "chapter name (required)")
	deleteCmd.Flags().StringVar(&deleteLesson, "lesson", "", "lesson name (required)")
	deleteCmd.Flags().StringVar(&deleteTitle, "title", "", "content title (required)")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, _ []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	key := domain.ContentKey{
		Chapter: deleteChapter,
		Lesson:  deleteLesson,
		Title:   deleteTitle,
	}

	if err := knowledgeService.Delete(cmd.Context(), key); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no content stored under %s", key.String())
		}
		return fmt.Errorf("delete content: %w", err)
	}

	cmd.Printf("Deleted %s\n", key.String())
	return nil
}
