// Package mcp provides an MCP (Model Context Protocol) server adapter for reqsift.
// It lets AI assistants run extractions and read stored requirements.
package mcp

import "errors"

// ErrMissingExtractionService is returned when the extraction service is not provided.
var ErrMissingExtractionService = errors.New("mcp: extraction service is required")
