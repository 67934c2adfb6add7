package file

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/lomnlabs/lomn-cli/internal/core/domain"
	"github.com/lomnlabs/lomn-cli/internal/core/ports/driven"
	"github.com/lomnlabs/lomn-cli/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.LexiconStore = (*Store)(nil)

//go:embed default_lexicon.toml
var defaultLexiconTOML []byte

// lexiconFile is the on-disk TOML shape of a lexicon.
type lexiconFile struct {
	Version string              `toml:"version"`
	Terms   map[string][]string `toml:"terms"`
}

// Store is the file-backed lexicon store. An embedded default lexicon is
// always available; a TOML file at the configured path overrides it. The
// current lexicon is swapped atomically on reload so readers never see a
// partially loaded value.
type Store struct {
	mu        sync.RWMutex
	path      string
	current   *domain.Lexicon
	watcher   *fsnotify.Watcher
	stopCh    chan struct{}
	closeOnce sync.Once
}

// NewStore creates a lexicon store reading overrides from path.
// If path is empty, defaults to ~/.lomn/lexicon.toml. The file not
// existing is not an error; the embedded default lexicon is used.
func NewStore(path string) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".lomn", "lexicon.toml")
	}

	s := &Store{
		path:   path,
		stopCh: make(chan struct{}),
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Lexicon returns the current lexicon. The returned value is shared and
// must be treated as read-only.
func (s *Store) Lexicon() *domain.Lexicon {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Reload loads the lexicon from disk, falling back to the embedded
// default when no override file exists.
func (s *Store) Reload() error {
	data := defaultLexiconTOML

	fileData, err := os.ReadFile(s.path)
	switch {
	case err == nil:
		data = fileData
	case os.IsNotExist(err):
		// No override file, keep the embedded default.
	default:
		return fmt.Errorf("reading lexicon file: %w", err)
	}

	lex, err := parseLexicon(data)
	if err != nil {
		return fmt.Errorf("parsing lexicon: %w", err)
	}

	s.mu.Lock()
	s.current = lex
	s.mu.Unlock()
	return nil
}

// Watch starts watching the lexicon file for edits. Writes, creates and
// renames trigger a reload; reload failures keep the previous lexicon.
func (s *Store) Watch() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	// Watch the parent directory so creation of a missing override file
	// is observed too.
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		watcher.Close()
		return fmt.Errorf("creating lexicon directory: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watching lexicon directory: %w", err)
	}

	s.watcher = watcher
	go s.handleEvents(watcher)
	return nil
}

// handleEvents processes file system events until the store is closed.
func (s *Store) handleEvents(watcher *fsnotify.Watcher) {
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Name != s.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if err := s.Reload(); err != nil {
				logger.Warn("lexicon reload failed: %v", err)
			} else {
				logger.Debug("lexicon reloaded from %s", s.path)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("lexicon watcher error: %v", err)

		case <-s.stopCh:
			return
		}
	}
}

// Close stops watching for changes.
func (s *Store) Close() error {
	var closeErr error
	s.closeOnce.Do(func() {
		close(s.stopCh)
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.watcher != nil {
			closeErr = s.watcher.Close()
			s.watcher = nil
		}
	})
	return closeErr
}

// Path returns the lexicon override file path.
func (s *Store) Path() string {
	return s.path
}

// parseLexicon decodes TOML lexicon data, dropping unknown categories.
func parseLexicon(data []byte) (*domain.Lexicon, error) {
	var file lexiconFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	lex := &domain.Lexicon{
		Version: file.Version,
		Terms:   make(map[domain.WarningCategory][]string, len(file.Terms)),
	}
	for name, terms := range file.Terms {
		category := domain.WarningCategory(name)
		if !category.IsValid() {
			logger.Warn("ignoring unknown lexicon category %q", name)
			continue
		}
		lex.Terms[category] = terms
	}
	return lex, nil
}
