// Package domain contains the core business entities for the tutor CLI:
// content items, chunks, search results and configuration settings.
// It has no dependencies on infrastructure.
package domain
