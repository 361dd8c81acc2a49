package mcp

import (
	"context"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/minerva-edu/tutor-cli/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query to find course content"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 5)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	Title       string  `json:"title"`
	Similarity  float64 `json:"similarity"`
	Content     string  `json:"content"`
	ResourceURL string  `json:"resource_url,omitempty"`
	VideoURL    string  `json:"video_url,omitempty"`
}

// ChaptersOutput is the output schema for the chapter listing tool.
type ChaptersOutput struct {
	Chapters []ChapterOutput `json:"chapters"`
}

// ChapterOutput represents one chapter with its lessons in display order.
type ChapterOutput struct {
	Name    string   `json:"name"`
	Lessons []string `json:"lessons"`
}

// LessonContentInput is the input schema for the lesson content tool.
type LessonContentInput struct {
	Chapter string `json:"chapter" jsonschema:"the chapter name"`
	Lesson  string `json:"lesson" jsonschema:"the lesson name within the chapter"`
	Title   string `json:"title,omitempty" jsonschema:"the content title within the lesson (omit for all items)"`
}

// LessonContentOutput is the output schema for the lesson content tool.
type LessonContentOutput struct {
	Items []LessonItemOutput `json:"items"`
}

// LessonItemOutput is one content item with its full text.
type LessonItemOutput struct {
	Title   string `json:"title"`
	DocType string `json:"doc_type"`
	Content string `json:"content"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from course material"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer         string   `json:"answer"`
	Sources        []string `json:"sources,omitempty"`
	ReferencedURLs []string `json:"referenced_urls,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_course",
		Description: "Semantic search over the stored course content",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_chapters",
		Description: "List the chapter and lesson structure of the course",
	}, s.handleListChapters)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_lesson_content",
		Description: "Read the full text of one content item",
	}, s.handleLessonContent)

	if s.ports.Ask != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask_course",
			Description: "Answer a question grounded in the course material",
		}, s.handleAsk)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}

	results := s.ports.Knowledge.Search(ctx, input.Query, limit)

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}

	for i := range results {
		output.Results[i] = SearchResultOutput{
			Title:       results[i].Title,
			Similarity:  results[i].Similarity(),
			Content:     results[i].Content,
			ResourceURL: results[i].ResourceURL,
			VideoURL:    results[i].VideoURL,
		}
	}

	return nil, output, nil
}

// handleListChapters handles the chapter listing tool invocation.
func (s *Server) handleListChapters(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, ChaptersOutput, error) {
	index, err := s.ports.Knowledge.ListChapters(ctx)
	if err != nil {
		return nil, ChaptersOutput{}, err
	}

	output := ChaptersOutput{Chapters: make([]ChapterOutput, 0, len(index))}
	for name, info := range index {
		lessons := make([]string, 0, len(info.Lessons))
		for lesson := range info.Lessons {
			lessons = append(lessons, lesson)
		}
		sort.Slice(lessons, func(i, j int) bool {
			a, b := info.Lessons[lessons[i]], info.Lessons[lessons[j]]
			if a.Order != b.Order {
				return a.Order < b.Order
			}
			return lessons[i] < lessons[j]
		})
		output.Chapters = append(output.Chapters, ChapterOutput{Name: name, Lessons: lessons})
	}
	sort.Slice(output.Chapters, func(i, j int) bool {
		a, b := index[output.Chapters[i].Name], index[output.Chapters[j].Name]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return output.Chapters[i].Name < output.Chapters[j].Name
	})

	return nil, output, nil
}

// handleLessonContent handles the lesson content tool invocation.
func (s *Server) handleLessonContent(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LessonContentInput,
) (*mcp.CallToolResult, LessonContentOutput, error) {
	if input.Title != "" {
		key := domain.ContentKey{
			Chapter: input.Chapter,
			Lesson:  input.Lesson,
			Title:   input.Title,
		}
		body, err := s.ports.Knowledge.GetFullContent(ctx, key)
		if err != nil {
			return nil, LessonContentOutput{}, err
		}
		return nil, LessonContentOutput{
			Items: []LessonItemOutput{{Title: input.Title, Content: body}},
		}, nil
	}

	contents, err := s.ports.Knowledge.GetLessonContent(ctx, input.Chapter, input.Lesson)
	if err != nil {
		return nil, LessonContentOutput{}, err
	}

	items := make([]LessonItemOutput, len(contents))
	for i, content := range contents {
		items[i] = LessonItemOutput{
			Title:   content.Title,
			DocType: content.DocType.String(),
			Content: content.Body,
		}
	}
	return nil, LessonContentOutput{Items: items}, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Ask.Ask(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Answer:         answer.Text,
		Sources:        answer.Sources,
		ReferencedURLs: answer.ReferencedURLs,
	}, nil
}
