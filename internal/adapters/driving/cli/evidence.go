package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lomnlabs/lomn-cli/internal/core/domain"
	"github.com/lomnlabs/lomn-cli/internal/core/ports/driven"
)

// evidenceStore is the store behind the evidence admin commands.
var evidenceStore driven.EvidenceStore

// SetEvidenceStore wires the evidence store for the admin commands.
func SetEvidenceStore(store driven.EvidenceStore) {
	evidenceStore = store
}

var evidenceCmd = &cobra.Command{
	Use:   "evidence",
	Short: "Manage the evidence corpus",
	Long:  `List, inspect or remove ingested evidence documents.`,
}

var evidenceListCategory string

var evidenceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested documents",
	Args:  cobra.NoArgs,
	RunE:  runEvidenceList,
}

var evidenceShowCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Show a document and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runEvidenceShow,
}

var evidenceDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Remove a document and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runEvidenceDelete,
}

func init() {
	evidenceListCmd.Flags().StringVarP(&evidenceListCategory, "category", "c", "",
		"filter by category (approved, denied, policy, guideline)")

	evidenceCmd.AddCommand(evidenceListCmd)
	evidenceCmd.AddCommand(evidenceShowCmd)
	evidenceCmd.AddCommand(evidenceDeleteCmd)
	rootCmd.AddCommand(evidenceCmd)
}

func runEvidenceList(cmd *cobra.Command, _ []string) error {
	if evidenceStore == nil {
		return errors.New("evidence store not configured")
	}

	category := domain.Category(evidenceListCategory)
	if evidenceListCategory != "" && !category.IsValid() {
		return fmt.Errorf("unknown category %q", evidenceListCategory)
	}

	docs, err := evidenceStore.ListDocuments(cmd.Context(), category)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	if len(docs) == 0 {
		cmd.Println("No documents ingested.")
		return nil
	}

	for i := range docs {
		doc := &docs[i]
		cmd.Printf("  %s [%s]", doc.ID, doc.Category)
		if doc.Payer != "" {
			cmd.Printf(" payer=%s", doc.Payer)
		}
		if doc.Diagnosis != "" {
			cmd.Printf(" diagnosis=%s", doc.Diagnosis)
		}
		cmd.Println()
	}
	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runEvidenceShow(cmd *cobra.Command, args []string) error {
	if evidenceStore == nil {
		return errors.New("evidence store not configured")
	}

	ctx := cmd.Context()
	doc, err := evidenceStore.GetDocument(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}
	chunks, err := evidenceStore.GetChunks(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("failed to get chunks: %w", err)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Category:   %s\n", doc.Category)
	if doc.Payer != "" {
		cmd.Printf("  Payer:      %s\n", doc.Payer)
	}
	if doc.Diagnosis != "" {
		cmd.Printf("  Diagnosis:  %s\n", doc.Diagnosis)
	}
	if doc.PatientAge > 0 {
		cmd.Printf("  Age:        %d\n", doc.PatientAge)
	}
	if doc.AuthorRole != "" {
		cmd.Printf("  Author:     %s\n", doc.AuthorRole)
	}
	cmd.Printf("  Ingested:   %s\n", doc.IngestedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Chunks:     %d\n", len(chunks))

	for i := range chunks {
		cmd.Printf("\n  [%s] bytes %d-%d\n", chunks[i].ID, chunks[i].Start, chunks[i].End)
		cmd.Printf("  %s\n", snippet(chunks[i].Text, 160))
	}
	return nil
}

func runEvidenceDelete(cmd *cobra.Command, args []string) error {
	if evidenceStore == nil {
		return errors.New("evidence store not configured")
	}

	if err := evidenceStore.DeleteDocument(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Document %s deleted.\n", args[0])
	cmd.Println("Run 'lomn reindex' to drop its vectors from the index.")
	return nil
}
