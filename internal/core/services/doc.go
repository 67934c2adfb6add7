// Package services contains the core business logic implementations.
// Services implement the driving port interfaces and orchestrate domain
// operations using driven port interfaces.
//
// Services:
//   - IngestService: chunk, embed and index evidence documents
//   - RetrievalService: ranked evidence retrieval over the vector index
//   - ValidationService: lexicon scanning for policy-violation language
//   - LetterService: retrieve, validate, assemble, generate, report
//   - SettingsService: application settings management
package services
