package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minerva-edu/tutor-cli/internal/core/domain"
)

func resetAddFlags() {
	addChapter = ""
	addLesson = ""
	addTitle = ""
	addDocType = "text"
	addBody = ""
	addBodyFile = ""
	addResourceURL = ""
	addVideoURL = ""
	addChapterOrder = 0
	addLessonOrder = 0
}

func TestAddCmd_Use(t *testing.T) {
	assert.Equal(t, "add", addCmd.Use)
}

func TestAddCmd_StoresItem(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer resetAddFlags()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{
		"add",
		"--chapter", "Basics",
		"--lesson", "Variables",
		"--title", "Introduction",
		"--type", "video",
		"--body", "Variables hold values.",
		"--video-url", "https://youtube.com/watch?v=abc12345678",
		"--chapter-order", "1",
		"--lesson-order", "2",
	})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	require.NoError(t, err)

	mock, ok := knowledgeService.(*mockKnowledgeService)
	require.True(t, ok)
	assert.Equal(t, "Basics", mock.lastItem.Key.Chapter)
	assert.Equal(t, "Variables", mock.lastItem.Key.Lesson)
	assert.Equal(t, "Introduction", mock.lastItem.Key.Title)
	assert.Equal(t, domain.DocTypeVideo, mock.lastItem.DocType)
	assert.Equal(t, "Variables hold values.", mock.lastItem.Body)
	assert.Equal(t, 1, mock.lastItem.ChapterOrder)
	assert.Equal(t, 2, mock.lastItem.LessonOrder)
	assert.Contains(t, buf.String(), "Stored Basics/Variables/Introduction")
}

func TestAddCmd_BodyFromStdin(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer resetAddFlags()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetIn(bytes.NewBufferString("body from stdin"))
	rootCmd.SetArgs([]string{
		"add",
		"--chapter", "Basics",
		"--lesson", "Variables",
		"--title", "Introduction",
		"--body-file", "-",
	})
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	require.NoError(t, err)

	mock, ok := knowledgeService.(*mockKnowledgeService)
	require.True(t, ok)
	assert.Equal(t, "body from stdin", mock.lastItem.Body)
}

func TestAddCmd_RequiresBody(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer resetAddFlags()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"add", "--chapter", "Basics", "--lesson", "Variables", "--title", "Introduction"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "--body or --body-file is required")
}

func TestAddCmd_RejectsBothBodySources(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer resetAddFlags()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{
		"add",
		"--chapter", "Basics",
		"--lesson", "Variables",
		"--title", "Introduction",
		"--body", "text",
		"--body-file", "file.txt",
	})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not both")
}

func TestDeleteCmd_DeletesItem(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"delete", "--chapter", "Basics", "--lesson", "Variables", "--title", "Introduction"})
	defer func() {
		rootCmd.SetArgs(nil)
		deleteChapter = ""
		deleteLesson = ""
		deleteTitle = ""
	}()

	err := rootCmd.Execute()
	require.NoError(t, err)

	mock, ok := knowledgeService.(*mockKnowledgeService)
	require.True(t, ok)
	assert.Equal(t, "Basics", mock.lastKey.Chapter)
	assert.Contains(t, buf.String(), "Deleted Basics/Variables/Introduction")
}

func TestDeleteCmd_NotFound(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	knowledgeService.(*mockKnowledgeService).deleteErr = domain.ErrNotFound

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"delete", "--chapter", "Basics", "--lesson", "Variables", "--title", "Missing"})
	defer func() {
		rootCmd.SetArgs(nil)
		deleteChapter = ""
		deleteLesson = ""
		deleteTitle = ""
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no content stored under")
}

func TestContentCmd_PrintsBody(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"content", "--chapter", "Basics", "--lesson", "Variables", "--title", "Introduction"})
	defer func() {
		rootCmd.SetArgs(nil)
		contentChapter = ""
		contentLesson = ""
		contentTitle = ""
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "This is the full lesson body.")
}

func TestContentCmd_ListsWholeLesson(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"content", "--chapter", "Basics", "--lesson", "Variables"})
	defer func() {
		rootCmd.SetArgs(nil)
		contentChapter = ""
		contentLesson = ""
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "=== Introduction (text) ===")
	assert.Contains(t, buf.String(), "=== Walkthrough (video) ===")
	assert.Contains(t, buf.String(), "Video transcript body.")
}

func TestContentCmd_NotFound(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"content", "--chapter", "Basics", "--lesson", "Variables", "--title", "missing"})
	defer func() {
		rootCmd.SetArgs(nil)
		contentChapter = ""
		contentLesson = ""
		contentTitle = ""
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no content stored under")
}
