// Command lomn drafts Letters of Medical Necessity grounded in a local
// evidence corpus. This is the composition root: adapters are built from
// settings and wired into the core services here.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lomnlabs/lomn-cli/internal/adapters/driven/ai"
	configfile "github.com/lomnlabs/lomn-cli/internal/adapters/driven/config/file"
	"github.com/lomnlabs/lomn-cli/internal/adapters/driven/index/flat"
	lexiconfile "github.com/lomnlabs/lomn-cli/internal/adapters/driven/lexicon/file"
	"github.com/lomnlabs/lomn-cli/internal/adapters/driven/storage/sqlite"
	"github.com/lomnlabs/lomn-cli/internal/adapters/driving/cli"
	"github.com/lomnlabs/lomn-cli/internal/core/domain"
	"github.com/lomnlabs/lomn-cli/internal/core/ports/driven"
	"github.com/lomnlabs/lomn-cli/internal/core/services"
	"github.com/lomnlabs/lomn-cli/internal/logger"
	"github.com/lomnlabs/lomn-cli/internal/postprocessors"
	"github.com/lomnlabs/lomn-cli/internal/postprocessors/chunker"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	lomnDir, err := lomnHome()
	if err != nil {
		return err
	}

	configStore, err := configfile.NewConfigStore(lomnDir)
	if err != nil {
		return fmt.Errorf("initialising config: %w", err)
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	store, err := sqlite.NewStore(filepath.Join(lomnDir, "data"))
	if err != nil {
		return fmt.Errorf("opening evidence store: %w", err)
	}
	defer store.Close()

	lexicons, err := lexiconfile.NewStore(settings.LexiconPath)
	if err != nil {
		return fmt.Errorf("loading lexicon: %w", err)
	}
	defer lexicons.Close()
	if err := lexicons.Watch(); err != nil {
		logger.Warn("Lexicon watching disabled: %v", err)
	}

	prompts, err := configfile.NewPromptStore(filepath.Join(lomnDir, "prompts"))
	if err != nil {
		return fmt.Errorf("initialising prompt store: %w", err)
	}

	// AI providers are optional until configured; the services report
	// availability errors when they are needed but missing.
	embedder, err := ai.CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: embedding provider unavailable: %v\n", err)
	}
	if embedder != nil {
		defer embedder.Close()
	}

	generator, err := ai.CreateAndValidateGenerator(&settings.Generator)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: generator unavailable: %v\n", err)
	}
	if generator != nil {
		defer generator.Close()
	}

	indexDir := filepath.Join(lomnDir, "index")
	handle := loadIndex(indexDir)

	pipeline := buildPipeline(settings)
	newIndex := func(dimensions int, embedderTag string) (driven.VectorIndex, error) {
		return flat.New(dimensions, embedderTag)
	}

	ingest := services.NewIngestService(pipeline, embedder, store, handle, newIndex)
	if handle.Get() == nil {
		restoreIndex(ingest)
	}
	warnEmbedderMismatch(handle, embedder)

	retrieval := services.NewRetrievalService(embedder, handle, store)
	validation := services.NewValidationService(lexicons)
	assembler := services.NewAssembler(prompts)
	reporter := services.NewReporter(validation)
	letter := services.NewLetterService(
		retrieval, validation, assembler, reporter, generator,
		time.Duration(settings.Generator.TimeoutSeconds)*time.Second,
	)

	cli.SetServices(&cli.Services{
		Ingest:       ingest,
		Retrieval:    retrieval,
		Validation:   validation,
		Letter:       letter,
		Settings:     settingsService,
		PersistIndex: persistIndexFunc(handle, store, indexDir),
	})
	cli.SetEvidenceStore(store)

	return cli.Execute()
}

// lomnHome returns the application directory, ~/.lomn unless overridden
// via LOMN_HOME.
func lomnHome() (string, error) {
	if dir := os.Getenv("LOMN_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".lomn"), nil
}

// buildPipeline constructs the chunking pipeline from settings.
func buildPipeline(settings *domain.AppSettings) *postprocessors.Pipeline {
	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)

	proc, err := registry.Build("chunker", map[string]any{
		"chunk_size": settings.Chunking.TargetSize,
		"overlap":    settings.Chunking.Overlap,
	})
	if err != nil {
		// The built-in chunker cannot fail to build on validated
		// settings; fall back to defaults if it somehow does.
		logger.Warn("Building chunker from settings: %v", err)
		proc = chunker.New()
	}

	pipeline := postprocessors.NewPipeline(proc)
	if clean, err := registry.Build("cleaner", nil); err == nil {
		pipeline.Add(clean)
	}
	return pipeline
}

// loadIndex loads the persisted index artifacts, returning an empty
// handle when they are missing or inconsistent.
func loadIndex(indexDir string) *services.IndexHandle {
	idx, _, err := flat.Load(indexDir)
	if err != nil {
		if !errors.Is(err, domain.ErrInconsistentIndex) {
			logger.Warn("Loading index: %v", err)
		}
		return services.NewIndexHandle(nil)
	}
	logger.Debug("Loaded index with %d vectors", idx.Len())
	return services.NewIndexHandle(idx)
}

// restoreIndex rebuilds the index from embeddings persisted in the
// evidence store when the on-disk artifacts were missing or damaged.
func restoreIndex(ingest *services.IngestService) {
	restored, err := ingest.RestoreIndex(context.Background())
	if err != nil {
		logger.Warn("Restoring index from store: %v", err)
		return
	}
	if restored > 0 {
		logger.Info("Restored index with %d vectors from the evidence store", restored)
	}
}

// warnEmbedderMismatch flags an index built with a different embedding
// model than the configured one. Queries against it will be rejected
// until a reindex.
func warnEmbedderMismatch(handle *services.IndexHandle, embedder driven.EmbeddingService) {
	index := handle.Get()
	if index == nil || embedder == nil {
		return
	}
	if tag := index.EmbedderTag(); tag != "" && tag != embedder.ModelName() {
		fmt.Fprintf(os.Stderr,
			"Warning: index was built with embedding model %q but %q is configured; run 'lomn reindex'\n",
			tag, embedder.ModelName())
	}
}

// persistIndexFunc writes the live index and its chunks to disk.
func persistIndexFunc(handle *services.IndexHandle, store driven.EvidenceStore, indexDir string) func() error {
	return func() error {
		index := handle.Get()
		if index == nil {
			return nil
		}
		flatIndex, ok := index.(*flat.Index)
		if !ok {
			return nil
		}

		chunks, err := allChunks(store)
		if err != nil {
			return err
		}
		return flat.Save(flatIndex, chunks, indexDir)
	}
}

// allChunks loads every stored chunk across all documents.
func allChunks(store driven.EvidenceStore) ([]domain.Chunk, error) {
	ctx := context.Background()
	docs, err := store.ListDocuments(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	var chunks []domain.Chunk
	for i := range docs {
		docChunks, err := store.GetChunks(ctx, docs[i].ID)
		if err != nil {
			return nil, fmt.Errorf("loading chunks for %s: %w", docs[i].ID, err)
		}
		chunks = append(chunks, docChunks...)
	}
	return chunks, nil
}
