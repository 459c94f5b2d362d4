// Package domain defines the core business entities for reqsift.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawDocument: An input file and its detected Category
//   - ExtractedContent: Text and tables a provider produced for one file
//   - CategoryBucket: Aggregated text and tables for one category in a run
//   - Chunk: A bounded, line-aligned slice of bucket text
//   - Requirement: A structured requirement record extracted by the model
//   - Accumulator: The ordered, duplicate-free record set of a run
//   - ExtractionRun: A persisted set of requirements for a project
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
