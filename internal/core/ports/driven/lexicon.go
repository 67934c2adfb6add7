package driven

import "github.com/lomnlabs/lomn-cli/internal/core/domain"

// LexiconStore provides the validator lexicon.
//
// The lexicon is loaded once at startup into an immutable value; file
// implementations may watch for edits and swap in a fresh value
// atomically. Consumers must treat a returned lexicon as read-only.
type LexiconStore interface {
	// Lexicon returns the current lexicon.
	Lexicon() *domain.Lexicon

	// Reload forces a fresh load from the backing source.
	Reload() error

	// Close stops any background watching.
	Close() error
}
