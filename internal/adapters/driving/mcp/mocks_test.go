package mcp

import (
	"context"

	"github.com/minerva-edu/tutor-cli/internal/core/domain"
	"github.com/minerva-edu/tutor-cli/internal/core/ports/driving"
)

// mockKnowledgeService is a mock implementation of driving.KnowledgeService.
type mockKnowledgeService struct {
	results []domain.SearchResult
	index   domain.ChapterIndex
	content string
	err     error
}

func (m *mockKnowledgeService) AddOrUpdate(_ context.Context, _ domain.ContentItem) error {
	return m.err
}

func (m *mockKnowledgeService) Delete(_ context.Context, _ domain.ContentKey) error {
	return m.err
}

func (m *mockKnowledgeService) Search(_ context.Context, _ string, limit int) []domain.SearchResult {
	if limit < len(m.results) {
		return m.results[:limit]
	}
	return m.results
}

func (m *mockKnowledgeService) ListChapters(_ context.Context) (domain.ChapterIndex, error) {
	return m.index, m.err
}

func (m *mockKnowledgeService) GetFullContent(_ context.Context, _ domain.ContentKey) (string, error) {
	return m.content, m.err
}

func (m *mockKnowledgeService) GetLessonContent(_ context.Context, _, _ string) ([]domain.LessonContent, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []domain.LessonContent{{Title: "Intro", DocType: domain.DocTypeText, Body: m.content}}, nil
}

func (m *mockKnowledgeService) Clear(_ context.Context) error {
	return m.err
}

func (m *mockKnowledgeService) Stats(_ context.Context) (domain.Stats, error) {
	return domain.Stats{}, m.err
}

// mockAskService is a mock implementation of driving.AskService.
type mockAskService struct {
	answer driving.Answer
	err    error
}

func (m *mockAskService) Ask(_ context.Context, _ string) (driving.Answer, error) {
	return m.answer, m.err
}
