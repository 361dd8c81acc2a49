// Package mcp provides an MCP (Model Context Protocol) server adapter.
// It lets AI assistants search the course knowledge base and read lesson
// content directly.
package mcp

import "errors"

// ErrMissingKnowledgeService is returned when the knowledge service is not provided.
var ErrMissingKnowledgeService = errors.New("mcp: knowledge service is required")
