package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lomnlabs/lomn-cli/internal/core/domain"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Ingest evidence documents",
	Long: `Chunk, embed and index evidence documents from a JSON file or a
directory of JSON files.

Each file holds one document object or an array of documents:

  {
    "id": "approved-017",
    "category": "approved",
    "payer": "Acme Health",
    "diagnosis": "cerebral palsy",
    "body": "..."
  }

Categories: approved, denied, policy, guideline.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the vector index from stored documents",
	Long: `Re-chunks and re-embeds every stored document into a fresh index.
Run after changing chunking parameters or the embedding model.`,
	Args: cobra.NoArgs,
	RunE: runReindex,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(reindexCmd)
}

// documentFile is the JSON wire shape of an evidence document.
type documentFile struct {
	ID         string            `json:"id"`
	Category   string            `json:"category"`
	Payer      string            `json:"payer,omitempty"`
	Diagnosis  string            `json:"diagnosis,omitempty"`
	PatientAge int               `json:"patient_age,omitempty"`
	AuthorRole string            `json:"author_role,omitempty"`
	Body       string            `json:"body"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

func (d documentFile) toDomain() domain.Document {
	return domain.Document{
		ID:         d.ID,
		Category:   domain.Category(d.Category),
		Payer:      d.Payer,
		Diagnosis:  d.Diagnosis,
		PatientAge: d.PatientAge,
		AuthorRole: d.AuthorRole,
		Body:       d.Body,
		Metadata:   d.Metadata,
		IngestedAt: time.Now().UTC(),
	}
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	docs, err := loadDocuments(args[0])
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	report, err := ingestService.Ingest(cmd.Context(), docs)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	savePersistedIndex(cmd)

	cmd.Printf("Ingested %d documents (%d chunks).\n", report.Documents, report.Chunks)
	printFailed(cmd, report.Failed)
	return nil
}

func runReindex(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	report, err := ingestService.Reindex(cmd.Context())
	if err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}
	savePersistedIndex(cmd)

	cmd.Printf("Reindexed %d documents (%d chunks).\n", report.Documents, report.Chunks)
	printFailed(cmd, report.Failed)
	return nil
}

func printFailed(cmd *cobra.Command, failed map[string]error) {
	if len(failed) == 0 {
		return
	}
	ids := make([]string, 0, len(failed))
	for id := range failed {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	cmd.Printf("Failed: %d\n", len(failed))
	for _, id := range ids {
		cmd.Printf("  %s: %v\n", id, failed[id])
	}
}

// loadDocuments reads documents from a JSON file or every .json file in
// a directory.
func loadDocuments(path string) ([]domain.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if !info.IsDir() {
		return readDocumentFile(path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", path, err)
	}

	var docs []domain.Document
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		fileDocs, err := readDocumentFile(filepath.Join(path, entry.Name()))
		if err != nil {
			return nil, err
		}
		docs = append(docs, fileDocs...)
	}
	return docs, nil
}

// readDocumentFile parses one JSON file holding a document object or an
// array of documents.
func readDocumentFile(path string) ([]domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var files []documentFile
		if err := json.Unmarshal(data, &files); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		docs := make([]domain.Document, len(files))
		for i, f := range files {
			docs[i] = f.toDomain()
		}
		return docs, nil
	}

	var file documentFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return []domain.Document{file.toDomain()}, nil
}
