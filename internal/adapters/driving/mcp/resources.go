package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/minerva-edu/tutor-cli/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for course resources.
	uriScheme = "tutor://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for the chapter index.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "chapters",
		Name:        "chapters",
		Description: "Chapter and lesson structure of the course",
		MIMEType:    "application/json",
	}, s.handleChaptersResource)

	// Template for content item bodies.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "content/{chapter}/{lesson}/{title}",
		Name:        "content",
		Description: "Full text of one content item",
		MIMEType:    "text/plain",
	}, s.handleContentResource)
}

// handleChaptersResource returns the chapter index as JSON.
func (s *Server) handleChaptersResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	index, err := s.ports.Knowledge.ListChapters(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing chapters: %w", err)
	}

	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling chapter index: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleContentResource returns the full body of one content item.
func (s *Server) handleContentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	key, ok := extractContentKey(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	body, err := s.ports.Knowledge.GetFullContent(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("getting content: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     body,
		}},
	}, nil
}

// extractContentKey parses a URI like tutor://content/{chapter}/{lesson}/{title}.
// Path segments are percent-decoded so names may contain any character
// except an unescaped slash.
func extractContentKey(uri string) (domain.ContentKey, bool) {
	const prefix = uriScheme + "content/"

	if !strings.HasPrefix(uri, prefix) {
		return domain.ContentKey{}, false
	}

	parts := strings.Split(strings.TrimPrefix(uri, prefix), "/")
	if len(parts) != 3 {
		return domain.ContentKey{}, false
	}

	decoded := make([]string, 3)
	for i, part := range parts {
		val, err := url.PathUnescape(part)
		if err != nil || val == "" {
			return domain.ContentKey{}, false
		}
		decoded[i] = val
	}

	return domain.ContentKey{
		Chapter: decoded[0],
		Lesson:  decoded[1],
		Title:   decoded[2],
	}, true
}
