// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The extraction pipeline is split into small pieces that can be
// tested in isolation:
//
//   - Aggregator: runs capability providers and merges their output per category
//   - Extractor: chunks one category's text and submits each chunk to the model
//   - ParseResponse: turns raw model output into requirement records
//   - ExtractionService: runs the categories in order and persists the result
//
// Services never import adapters; everything external arrives through
// the ports in internal/core/ports/driven.
package services
