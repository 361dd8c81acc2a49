package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/minerva-edu/tutor-cli/internal/core/domain"
)

var (
	addChapter      string
	addLesson       string
	addTitle        string
	addDocType      string
	addBody         string
	addBodyFile     string
	addResourceURL  string
	addVideoURL     string
	addChapterOrder int
	addLessonOrder  int
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add or update a content item",
	Long: `Adds a content item to the knowledge base, or replaces the stored
version if one exists under the same chapter, lesson and title. The body is
chunked and embedded before storage, so an embedding provider must be
configured.`,
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addChapter, "chapter", "", "chapter name (required)")
	addCmd.Flags().StringVar(&addLesson, "lesson", "", "lesson name (required)")
	addCmd.Flags().StringVar(&addTitle, "title", "", "content title (required)")
	addCmd.Flags().StringVar(&addDocType, "type", "text", "content type: text or video")
	addCmd.Flags().StringVar(&addBody, "body", "", "content body text")
	addCmd.Flags().StringVar(&addBodyFile, "body-file", "", "read content body from file (- for stdin)")
	addCmd.Flags().StringVar(&addResourceURL, "resource-url", "", "course platform page URL")
	addCmd.Flags().StringVar(&addVideoURL, "video-url", "", "video URL (video type)")
	addCmd.Flags().IntVar(&addChapterOrder, "chapter-order", 0, "chapter sort order")
	addCmd.Flags().IntVar(&addLessonOrder, "lesson-order", 0, "lesson sort order")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, _ []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	body, err := resolveBody(cmd)
	if err != nil {
		return err
	}

	item := domain.ContentItem{
		Key: domain.ContentKey{
			Chapter: addChapter,
			Lesson:  addLesson,
			Title:   addTitle,
		},
		ChapterOrder: addChapterOrder,
		LessonOrder:  addLessonOrder,
		DocType:      domain.DocType(addDocType),
		Body:         body,
		ResourceURL:  addResourceURL,
		VideoURL:     addVideoURL,
	}

	if err := knowledgeService.AddOrUpdate(cmd.Context(), item); err != nil {
		return fmt.Errorf("add content: %w", err)
	}

	cmd.Printf("Stored %s\n", item.Key.String())
	return nil
}

// resolveBody returns the content body from --body or --body-file.
func resolveBody(cmd *cobra.Command) (string, error) {
	if addBody != "" && addBodyFile != "" {
		return "", errors.New("use either --body or --body-file, not both")
	}
	if addBody != "" {
		return addBody, nil
	}
	if addBodyFile == "" {
		return "", errors.New("one of --body or --body-file is required")
	}

	if addBodyFile == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(addBodyFile)
	if err != nil {
		return "", fmt.Errorf("reading body file: %w", err)
	}
	return string(data), nil
}
