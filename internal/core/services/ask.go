package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/minerva-edu/tutor-cli/internal/core/domain"
	"github.com/minerva-edu/tutor-cli/internal/core/ports/driven"
	"github.com/minerva-edu/tutor-cli/internal/core/ports/driving"
	"github.com/minerva-edu/tutor-cli/internal/logger"
)

// Ensure AskService implements the interface.
var _ driving.AskService = (*AskService)(nil)

// noContextAnswer is returned when retrieval finds nothing to ground an
// answer in. The LLM is not called in that case.
const noContextAnswer = "申し訳ありません。その質問に関連する講座コンテンツが見つかりませんでした。別の言葉で質問していただくか、講座の目次をご確認ください。"

// AskService answers questions by retrieving course material, generating a
// grounded answer and logging the exchange.
type AskService struct {
	knowledge   driving.KnowledgeService
	llm         driven.LLMService
	questions   driven.QuestionStore
	searchLimit int
}

// NewAskService creates an ask service. The question store may be nil, in
// which case exchanges are not logged.
func NewAskService(knowledge driving.KnowledgeService, llm driven.LLMService, questions driven.QuestionStore) *AskService {
	return &AskService{
		knowledge:   knowledge,
		llm:         llm,
		questions:   questions,
		searchLimit: domain.DefaultSearchLimit,
	}
}

// Ask retrieves relevant material for question, generates an answer grounded
// in it, and logs the exchange.
func (s *AskService) Ask(ctx context.Context, question string) (driving.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return driving.Answer{}, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}
	if s.llm == nil {
		return driving.Answer{}, domain.ErrLLMUnavailable
	}

	logger.Section("Ask Pipeline")
	results := s.knowledge.Search(ctx, question, s.searchLimit)
	logger.Debug("Retrieved %d results", len(results))

	assembled := AssembleContext(results)
	answer := driving.Answer{
		ReferencedURLs: referencedURLs(assembled.Links),
		Sources:        assembled.Titles,
	}

	if assembled.Text == "" {
		answer.Text = noContextAnswer
	} else {
		text, err := s.llm.Complete(ctx, BuildSystemPrompt(assembled), question)
		if err != nil {
			return driving.Answer{}, fmt.Errorf("generate answer: %w", err)
		}
		answer.Text = text
	}

	s.logQuestion(ctx, question, answer)
	return answer, nil
}

// logQuestion records the exchange. Logging failures are not fatal to the
// answer already in hand.
func (s *AskService) logQuestion(ctx context.Context, question string, answer driving.Answer) {
	if s.questions == nil {
		return
	}
	entry := domain.QuestionLog{
		ID:             uuid.NewString(),
		Question:       question,
		Answer:         answer.Text,
		ReferencedURLs: answer.ReferencedURLs,
		AskedAt:        time.Now().UTC(),
	}
	if err := s.questions.SaveQuestion(ctx, entry); err != nil {
		logger.Warn("Failed to log question: %v", err)
	}
}

func referencedURLs(refs []ReferenceLink) []string {
	urls := make([]string, 0, len(refs))
	for _, ref := range refs {
		urls = append(urls, ref.URL)
	}
	return urls
}
