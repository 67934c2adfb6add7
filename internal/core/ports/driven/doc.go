// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - EvidenceStore: document and chunk persistence
//   - VectorIndex: vector storage and nearest-neighbour search
//   - EmbeddingService: text to vector embedding
//   - ConfigStore: application configuration
//
// # Optional Interfaces
//
//   - Generator: letter generation. Without it, only retrieval and
//     validation are available.
//   - LexiconStore: validator lexicon loading. Without it, the built-in
//     lexicon is used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
