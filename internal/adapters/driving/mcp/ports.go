package mcp

import (
	"github.com/custodia-labs/reqsift/internal/core/ports/driving"
)

// Ports aggregates the driving ports required by the MCP server.
type Ports struct {
	// Extraction runs the pipeline and reads stored runs.
	Extraction driving.ExtractionService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Extraction == nil {
		return ErrMissingExtractionService
	}
	return nil
}
