package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minerva-edu/tutor-cli/internal/core/domain"
	"github.com/minerva-edu/tutor-cli/internal/core/ports/driving"
)

// fakeKnowledge returns canned search results.
type fakeKnowledge struct {
	driving.KnowledgeService
	results []domain.SearchResult
}

func (f *fakeKnowledge) Search(_ context.Context, _ string, _ int) []domain.SearchResult {
	return f.results
}

// fakeLLM records prompts and returns a canned answer.
type fakeLLM struct {
	system string
	user   string
	answer string
	err    error
}

func (f *fakeLLM) Complete(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	f.system = systemPrompt
	f.user = userPrompt
	return f.answer, f.err
}

func (f *fakeLLM) ModelName() string { return "fake" }

func (f *fakeLLM) Ping(_ context.Context) error { return nil }

func (f *fakeLLM) Close() error { return nil }

// fakeQuestionStore captures saved logs.
type fakeQuestionStore struct {
	saved []domain.QuestionLog
	err   error
}

func (f *fakeQuestionStore) SaveQuestion(_ context.Context, log domain.QuestionLog) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, log)
	return nil
}

func (f *fakeQuestionStore) RecentQuestions(_ context.Context, _ int) ([]domain.QuestionLog, error) {
	return f.saved, nil
}

func TestAsk_GroundedAnswer(t *testing.T) {
	knowledge := &fakeKnowledge{results: []domain.SearchResult{
		{Content: "ブログの書き方", Title: "レッスン1", ResourceURL: "https://example.com/l1"},
	}}
	llm := &fakeLLM{answer: "タイトルから書き始めましょう。"}
	questions := &fakeQuestionStore{}
	svc := NewAskService(knowledge, llm, questions)

	answer, err := svc.Ask(context.Background(), "ブログはどう書きますか?")
	require.NoError(t, err)

	assert.Equal(t, "タイトルから書き始めましょう。", answer.Text)
	assert.Equal(t, []string{"https://example.com/l1"}, answer.ReferencedURLs)
	assert.Equal(t, []string{"レッスン1"}, answer.Sources)

	assert.Contains(t, llm.system, "ブログの書き方")
	assert.Equal(t, "ブログはどう書きますか?", llm.user)

	require.Len(t, questions.saved, 1)
	assert.Equal(t, "ブログはどう書きますか?", questions.saved[0].Question)
	assert.NotEmpty(t, questions.saved[0].ID)
	assert.False(t, questions.saved[0].AskedAt.IsZero())
}

func TestAsk_NoContextSkipsLLM(t *testing.T) {
	knowledge := &fakeKnowledge{}
	llm := &fakeLLM{answer: "should not be used"}
	svc := NewAskService(knowledge, llm, nil)

	answer, err := svc.Ask(context.Background(), "未知のトピック")
	require.NoError(t, err)

	assert.Equal(t, noContextAnswer, answer.Text)
	assert.Empty(t, llm.user, "LLM should not be called without context")
}

func TestAsk_EmptyQuestion(t *testing.T) {
	svc := NewAskService(&fakeKnowledge{}, &fakeLLM{}, nil)

	_, err := svc.Ask(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAsk_NoLLMConfigured(t *testing.T) {
	svc := NewAskService(&fakeKnowledge{}, nil, nil)

	_, err := svc.Ask(context.Background(), "質問")
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestAsk_LLMFailurePropagates(t *testing.T) {
	knowledge := &fakeKnowledge{results: []domain.SearchResult{{Content: "内容", Title: "T"}}}
	llm := &fakeLLM{err: errors.New("model overloaded")}
	svc := NewAskService(knowledge, llm, nil)

	_, err := svc.Ask(context.Background(), "質問")
	assert.Error(t, err)
}

func TestAsk_QuestionLogFailureIsNotFatal(t *testing.T) {
	knowledge := &fakeKnowledge{results: []domain.SearchResult{{Content: "内容", Title: "T"}}}
	llm := &fakeLLM{answer: "回答"}
	questions := &fakeQuestionStore{err: errors.New("disk full")}
	svc := NewAskService(knowledge, llm, questions)

	answer, err := svc.Ask(context.Background(), "質問")
	require.NoError(t, err)
	assert.Equal(t, "回答", answer.Text)
}
