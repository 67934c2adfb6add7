package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lomnlabs/lomn-cli/internal/core/domain"
)

var (
	retrieveK        int
	retrieveCategory string
	retrieveJSON     bool
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Retrieve ranked evidence for a query",
	Long: `Embeds the query, searches the vector index and prints the most
similar evidence chunks with their similarity scores.`,
	Args: cobra.ExactArgs(1),
	RunE: runRetrieve,
}

func init() {
	retrieveCmd.Flags().IntVarP(&retrieveK, "k", "k", domain.DefaultK, "number of evidence chunks")
	retrieveCmd.Flags().StringVarP(&retrieveCategory, "category", "c", "",
		"restrict to one category (approved, denied, policy, guideline)")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(retrieveCmd)
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	category := domain.Category(retrieveCategory)
	if retrieveCategory != "" && !category.IsValid() {
		return fmt.Errorf("unknown category %q", retrieveCategory)
	}

	result, err := retrievalService.Retrieve(cmd.Context(), args[0], domain.RetrievalOptions{
		K:        retrieveK,
		Category: category,
	})
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	if retrieveJSON {
		return printJSON(cmd, result)
	}
	return printRetrievalTable(cmd, result)
}

func printRetrievalTable(cmd *cobra.Command, result *domain.RetrievalResult) error {
	if result.Len() == 0 {
		cmd.Println("No evidence found.")
		return nil
	}

	cmd.Printf("Evidence for: %s\n\n", result.Query)
	for i, ev := range result.Evidence {
		cmd.Printf("  [%d] %s (%.3f)\n", i+1, ev.Chunk.ID, ev.Score)
		cmd.Printf("      Category: %s", ev.Chunk.Category)
		if payer := ev.Chunk.Metadata["payer"]; payer != "" {
			cmd.Printf("  Payer: %s", payer)
		}
		if diagnosis := ev.Chunk.Metadata["diagnosis"]; diagnosis != "" {
			cmd.Printf("  Diagnosis: %s", diagnosis)
		}
		cmd.Println()
		cmd.Printf("      %s\n", snippet(ev.Chunk.Text, 160))
		cmd.Println()
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// snippet truncates text for one-screen display.
func snippet(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen] + "..."
}
