package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/minerva-edu/tutor-cli/internal/core/domain"
)

var chaptersCmd = &cobra.Command{
	Use:   "chapters",
	Short: "List the chapter and lesson structure",
	RunE:  runChapters,
}

func init() {
	rootCmd.AddCommand(chaptersCmd)
}

func runChapters(cmd *cobra.Command, _ []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	index, err := knowledgeService.ListChapters(cmd.Context())
	if err != nil {
		return fmt.Errorf("list chapters: %w", err)
	}
	if len(index) == 0 {
		cmd.Println("The knowledge base is empty.")
		return nil
	}

	for _, chapter := range sortedChapters(index) {
		info := index[chapter]
		cmd.Printf("%s\n", chapter)
		for _, lesson := range sortedLessons(info.Lessons) {
			cmd.Printf("  - %s (%s)\n", lesson, docTypeList(info.Lessons[lesson].DocTypes))
		}
	}
	return nil
}

// sortedChapters orders chapter names by their order field, then name.
func sortedChapters(index domain.ChapterIndex) []string {
	names := make([]string, 0, len(index))
	for name := range index {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := index[names[i]], index[names[j]]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return names[i] < names[j]
	})
	return names
}

// sortedLessons orders lesson names by their order field, then name.
func sortedLessons(lessons map[string]domain.LessonInfo) []string {
	names := make([]string, 0, len(lessons))
	for name := range lessons {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := lessons[names[i]], lessons[names[j]]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return names[i] < names[j]
	})
	return names
}

func docTypeList(types []domain.DocType) string {
	out := ""
	for i, t := range types {
		if i > 0 {
			out += ", "
		}
		out += t.String()
	}
	return out
}
