package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/minerva-edu/tutor-cli/internal/core/domain"
)

var (
	contentChapter string
	contentLesson  string
	contentTitle   string
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Print the full body of stored content",
	Long: `Prints stored content bodies. With --title, prints one item's body;
without it, prints every item under the chapter and lesson.`,
	RunE: runContent,
}

func init() {
	contentCmd.Flags().StringVar(&contentChapter, "chapter", "", "chapter name (required)")
	contentCmd.Flags().StringVar(&contentLesson, "lesson", "", "lesson name (required)")
	contentCmd.Flags().StringVar(&contentTitle, "title", "", "content title (omit to list the whole lesson)")
	rootCmd.AddCommand(contentCmd)
}

func runContent(cmd *cobra.Command, _ []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	if contentTitle != "" {
		key := domain.ContentKey{
			Chapter: contentChapter,
			Lesson:  contentLesson,
			Title:   contentTitle,
		}

		body, err := knowledgeService.GetFullContent(cmd.Context(), key)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("no content stored under %s", key.String())
			}
			return fmt.Errorf("get content: %w", err)
		}

		cmd.Println(body)
		return nil
	}

	contents, err := knowledgeService.GetLessonContent(cmd.Context(), contentChapter, contentLesson)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no content stored under %s/%s", contentChapter, contentLesson)
		}
		return fmt.Errorf("get lesson content: %w", err)
	}

	for i, content := range contents {
		if i > 0 {
			cmd.Println()
		}
		cmd.Printf("=== %s (%s) ===\n", content.Title, content.DocType)
		cmd.Println(content.Body)
	}
	return nil
}
