// Package domain defines the core business entities for the LOMN CLI.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An ingested source document (prior LOMN, policy, guideline)
//   - Chunk: An indexed text segment derived from a document
//   - Evidence / RetrievalResult: Ranked chunks returned for a query
//   - CaseFacts: The patient-case query driving letter generation
//   - GenerationResult: A generated letter plus everything that produced it
//   - TransparencyReport: Derived attribution and coverage analysis
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
