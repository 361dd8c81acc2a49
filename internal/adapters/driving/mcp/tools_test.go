package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minerva-edu/tutor-cli/internal/core/domain"
	"github.com/minerva-edu/tutor-cli/internal/core/ports/driving"
)

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns search results", func(t *testing.T) {
		mockKnowledge := &mockKnowledgeService{
			results: []domain.SearchResult{
				{
					Content:     "Variables hold values.",
					Title:       "Introduction to Variables",
					ResourceURL: "https://example.com/lessons/variables",
					VideoURL:    "https://youtube.com/watch?v=abc12345678",
					Score:       0.2,
				},
			},
		}

		ports := &Ports{Knowledge: mockKnowledge}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := SearchInput{Query: "variables", Limit: 5}
		_, output, err := server.handleSearch(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		assert.Len(t, output.Results, 1)
		assert.Equal(t, "Introduction to Variables", output.Results[0].Title)
		assert.InDelta(t, 0.8, output.Results[0].Similarity, 1e-9)
		assert.Equal(t, "Variables hold values.", output.Results[0].Content)
		assert.Equal(t, "https://example.com/lessons/variables", output.Results[0].ResourceURL)
	})

	t.Run("empty query yields empty results", func(t *testing.T) {
		mockKnowledge := &mockKnowledgeService{}
		ports := &Ports{Knowledge: mockKnowledge}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := SearchInput{Query: "", Limit: 0}
		_, output, err := server.handleSearch(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
	})
}

func TestServer_handleListChapters(t *testing.T) {
	ctx := context.Background()

	mockKnowledge := &mockKnowledgeService{
		index: domain.ChapterIndex{
			"Advanced": {
				Order: 2,
				Lessons: map[string]domain.LessonInfo{
					"Generics": {Order: 1},
				},
			},
			"Basics": {
				Order: 1,
				Lessons: map[string]domain.LessonInfo{
					"Functions": {Order: 2},
					"Variables": {Order: 1},
				},
			},
		},
	}

	ports := &Ports{Knowledge: mockKnowledge}
	server, err := NewServer(ports)
	require.NoError(t, err)

	_, output, err := server.handleListChapters(ctx, nil, struct{}{})

	require.NoError(t, err)
	require.Len(t, output.Chapters, 2)
	assert.Equal(t, "Basics", output.Chapters[0].Name)
	assert.Equal(t, []string{"Variables", "Functions"}, output.Chapters[0].Lessons)
	assert.Equal(t, "Advanced", output.Chapters[1].Name)
}

func TestServer_handleLessonContent(t *testing.T) {
	ctx := context.Background()

	t.Run("returns one item with title", func(t *testing.T) {
		mockKnowledge := &mockKnowledgeService{content: "the full lesson text"}
		ports := &Ports{Knowledge: mockKnowledge}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := LessonContentInput{Chapter: "Basics", Lesson: "Variables", Title: "Intro"}
		_, output, err := server.handleLessonContent(ctx, nil, input)

		require.NoError(t, err)
		require.Len(t, output.Items, 1)
		assert.Equal(t, "Intro", output.Items[0].Title)
		assert.Equal(t, "the full lesson text", output.Items[0].Content)
	})

	t.Run("returns whole lesson without title", func(t *testing.T) {
		mockKnowledge := &mockKnowledgeService{content: "the full lesson text"}
		ports := &Ports{Knowledge: mockKnowledge}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := LessonContentInput{Chapter: "Basics", Lesson: "Variables"}
		_, output, err := server.handleLessonContent(ctx, nil, input)

		require.NoError(t, err)
		require.Len(t, output.Items, 1)
		assert.Equal(t, "text", output.Items[0].DocType)
	})

	t.Run("propagates not found", func(t *testing.T) {
		mockKnowledge := &mockKnowledgeService{err: domain.ErrNotFound}
		ports := &Ports{Knowledge: mockKnowledge}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := LessonContentInput{Chapter: "Basics", Lesson: "Variables", Title: "Missing"}
		_, _, err = server.handleLessonContent(ctx, nil, input)

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns answer", func(t *testing.T) {
		mockAsk := &mockAskService{
			answer: driving.Answer{
				Text:           "Variables hold values.",
				Sources:        []string{"Introduction to Variables"},
				ReferencedURLs: []string{"https://example.com/lessons/variables"},
			},
		}

		ports := &Ports{Knowledge: &mockKnowledgeService{}, Ask: mockAsk}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "What is a variable?"})

		require.NoError(t, err)
		assert.Equal(t, "Variables hold values.", output.Answer)
		assert.Equal(t, []string{"Introduction to Variables"}, output.Sources)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		mockAsk := &mockAskService{err: errors.New("generation failed")}
		ports := &Ports{Knowledge: &mockKnowledgeService{}, Ask: mockAsk}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "anything"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "generation failed")
	})
}
