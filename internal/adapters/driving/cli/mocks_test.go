package cli

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/minerva-edu/tutor-cli/internal/core/domain"
	"github.com/minerva-edu/tutor-cli/internal/core/ports/driven"
	"github.com/minerva-edu/tutor-cli/internal/core/ports/driving"
)

// setupTestServices installs mock services and returns a cleanup function
// restoring the previous ones.
func setupTestServices() func() {
	oldKnowledge := knowledgeService
	oldAsk := askService
	oldTransfer := transferService
	oldSettings := settingsService
	oldQuestions := questionStore

	knowledgeService = &mockKnowledgeService{}
	askService = &mockAskService{}
	transferService = &mockTransferService{}
	settingsService = &mockSettingsService{}
	questionStore = &mockQuestionStore{}

	return func() {
		knowledgeService = oldKnowledge
		askService = oldAsk
		transferService = oldTransfer
		settingsService = oldSettings
		questionStore = oldQuestions
	}
}

type mockKnowledgeService struct {
	addErr    error
	deleteErr error
	lastItem  domain.ContentItem
	lastKey   domain.ContentKey
}

func (m *mockKnowledgeService) AddOrUpdate(_ context.Context, item domain.ContentItem) error {
	m.lastItem = item
	return m.addErr
}

func (m *mockKnowledgeService) Delete(_ context.Context, key domain.ContentKey) error {
	m.lastKey = key
	return m.deleteErr
}

func (m *mockKnowledgeService) Search(_ context.Context, _ string, limit int) []domain.SearchResult {
	results := []domain.SearchResult{
		{
			Content:     "Variables hold values.",
			Title:       "Introduction to Variables",
			ResourceURL: "https://example.com/lessons/variables",
			VideoURL:    "https://youtube.com/watch?v=abc12345678",
			Score:       0.1,
		},
		{
			Content: "Functions group statements.",
			Title:   "Functions",
			Score:   0.3,
		},
	}
	if limit < len(results) {
		results = results[:limit]
	}
	return results
}

func (m *mockKnowledgeService) ListChapters(_ context.Context) (domain.ChapterIndex, error) {
	return domain.ChapterIndex{
		"Basics": {
			Order: 1,
			Lessons: map[string]domain.LessonInfo{
				"Variables": {Order: 1, DocTypes: []domain.DocType{domain.DocTypeText}},
				"Functions": {Order: 2, DocTypes: []domain.DocType{domain.DocTypeText, domain.DocTypeVideo}},
			},
		},
	}, nil
}

func (m *mockKnowledgeService) GetFullContent(_ context.Context, key domain.ContentKey) (string, error) {
	if key.Title == "missing" {
		return "", domain.ErrNotFound
	}
	return "This is the full lesson body.", nil
}

func (m *mockKnowledgeService) GetLessonContent(_ context.Context, chapter, lesson string) ([]domain.LessonContent, error) {
	if lesson == "missing" {
		return nil, domain.ErrNotFound
	}
	return []domain.LessonContent{
		{Title: "Introduction", DocType: domain.DocTypeText, Body: "This is the full lesson body."},
		{Title: "Walkthrough", DocType: domain.DocTypeVideo, Body: "Video transcript body."},
	}, nil
}

func (m *mockKnowledgeService) Clear(_ context.Context) error { return nil }

func (m *mockKnowledgeService) Stats(_ context.Context) (domain.Stats, error) {
	return domain.Stats{ContentCount: 3, ChunkCount: 12}, nil
}

type mockAskService struct {
	err error
}

func (m *mockAskService) Ask(_ context.Context, _ string) (driving.Answer, error) {
	if m.err != nil {
		return driving.Answer{}, m.err
	}
	return driving.Answer{
		Text:           "Variables hold values assigned with =.",
		ReferencedURLs: []string{"https://example.com/lessons/variables"},
		Sources:        []string{"Introduction to Variables"},
	}, nil
}

type mockTransferService struct {
	exportErr  error
	importErr  error
	migrateErr error
}

func (m *mockTransferService) Export(_ context.Context, w io.Writer) (driving.TransferReport, error) {
	if m.exportErr != nil {
		return driving.TransferReport{}, m.exportErr
	}
	if _, err := w.Write([]byte(`{"version":1,"items":[]}`)); err != nil {
		return driving.TransferReport{}, err
	}
	return driving.TransferReport{Items: 3}, nil
}

func (m *mockTransferService) Import(_ context.Context, r io.Reader) (driving.TransferReport, error) {
	if m.importErr != nil {
		return driving.TransferReport{}, m.importErr
	}
	if _, err := io.ReadAll(r); err != nil {
		return driving.TransferReport{}, err
	}
	return driving.TransferReport{Items: 2, Failed: []string{"Basics/Variables/broken"}}, nil
}

func (m *mockTransferService) Migrate(_ context.Context, _ driven.CourseStore) (driving.TransferReport, error) {
	if m.migrateErr != nil {
		return driving.TransferReport{}, m.migrateErr
	}
	return driving.TransferReport{Items: 3, Chunks: 12}, nil
}

type mockSettingsService struct {
	settings *domain.AppSettings
}

func (m *mockSettingsService) Get() (domain.AppSettings, error) {
	if m.settings != nil {
		return *m.settings, nil
	}
	return domain.DefaultAppSettings(), nil
}

func (m *mockSettingsService) Save(settings domain.AppSettings) error {
	m.settings = &settings
	return nil
}

func (m *mockSettingsService) SetStorageBackend(backend domain.StorageBackend, dsn string) error {
	settings, _ := m.Get() //nolint:errcheck // Mock never fails
	settings.Storage.Backend = backend
	settings.Storage.PostgresDSN = dsn
	return m.Save(settings)
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	settings, _ := m.Get() //nolint:errcheck // Mock never fails
	settings.Embedding = domain.EmbeddingSettings{Provider: provider, Model: model, APIKey: apiKey}
	return m.Save(settings)
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	settings, _ := m.Get() //nolint:errcheck // Mock never fails
	settings.LLM = domain.LLMSettings{Provider: provider, Model: model, APIKey: apiKey}
	return m.Save(settings)
}

func (m *mockSettingsService) Validate() error { return nil }

func (m *mockSettingsService) Path() string { return "/tmp/test-config.toml" }

type mockQuestionStore struct {
	saveErr error
	logs    []domain.QuestionLog
}

func (m *mockQuestionStore) SaveQuestion(_ context.Context, log domain.QuestionLog) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.logs = append(m.logs, log)
	return nil
}

func (m *mockQuestionStore) RecentQuestions(_ context.Context, limit int) ([]domain.QuestionLog, error) {
	logs := []domain.QuestionLog{
		{
			ID:       "q-1",
			Question: "What is a variable?",
			Answer:   "A named slot for a value.",
			AskedAt:  time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		},
	}
	logs = append(logs, m.logs...)
	if limit < len(logs) {
		logs = logs[:limit]
	}
	return logs, nil
}

// errAskService always fails, for error-path tests.
type errAskService struct{}

func (errAskService) Ask(context.Context, string) (driving.Answer, error) {
	return driving.Answer{}, errors.New("answer generation failed")
}
