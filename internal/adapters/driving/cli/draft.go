package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lomnlabs/lomn-cli/internal/core/domain"
	"github.com/lomnlabs/lomn-cli/internal/core/ports/driving"
)

var (
	draftDiagnosis   string
	draftEquipment   string
	draftLimitations string
	draftRationale   string
	draftPayer       string
	draftAge         int
	draftK           int
	draftCategory    string
	draftMaxTokens   int
	draftJSON        bool
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Draft a letter of medical necessity",
	Long: `Drafts a letter for a patient case, grounded in retrieved evidence.

The output includes the letter, the evidence it was grounded in, and a
transparency report: source attributions, stakeholder coverage, evidence
strength, uncertainty markers, content gaps and policy-language warnings.

Example:
  lomn draft --diagnosis "cerebral palsy" --equipment "power wheelchair" \
    --limitations "cannot self-propel a manual chair" --payer "Acme Health"`,
	RunE: runDraft,
}

func init() {
	draftCmd.Flags().StringVar(&draftDiagnosis, "diagnosis", "", "primary diagnosis")
	draftCmd.Flags().StringVar(&draftEquipment, "equipment", "", "requested equipment or treatment")
	draftCmd.Flags().StringVar(&draftLimitations, "limitations", "", "functional limitations")
	draftCmd.Flags().StringVar(&draftRationale, "rationale", "", "clinician rationale")
	draftCmd.Flags().StringVar(&draftPayer, "payer", "", "insurance payer")
	draftCmd.Flags().IntVar(&draftAge, "age", 0, "patient age")
	draftCmd.Flags().IntVarP(&draftK, "k", "k", 0, "evidence chunks to retrieve (default from settings)")
	draftCmd.Flags().StringVarP(&draftCategory, "category", "c", "", "restrict evidence to one category")
	draftCmd.Flags().IntVar(&draftMaxTokens, "max-context-tokens", 0, "prompt budget (default from settings)")
	draftCmd.Flags().BoolVar(&draftJSON, "json", false, "output the full response as JSON")
	rootCmd.AddCommand(draftCmd)
}

func runDraft(cmd *cobra.Command, _ []string) error {
	if letterService == nil {
		return errors.New("letter service not configured")
	}

	category := domain.Category(draftCategory)
	if draftCategory != "" && !category.IsValid() {
		return fmt.Errorf("unknown category %q", draftCategory)
	}

	facts := domain.CaseFacts{
		Diagnosis:             draftDiagnosis,
		Equipment:             draftEquipment,
		FunctionalLimitations: draftLimitations,
		Rationale:             draftRationale,
		Payer:                 draftPayer,
		PatientAge:            draftAge,
	}
	if strings.TrimSpace(facts.Query()) == "" {
		return errors.New("describe the case: at least one of --diagnosis, --equipment, --limitations or --rationale is required")
	}

	opts := driving.DraftOptions{
		K:                draftK,
		Category:         category,
		MaxContextTokens: draftMaxTokens,
	}
	if opts.MaxContextTokens <= 0 {
		opts.MaxContextTokens = defaultMaxContextTokens()
	}

	response, err := letterService.Draft(cmd.Context(), facts, opts)
	if err != nil {
		return fmt.Errorf("draft failed: %w", err)
	}

	if draftJSON {
		return printJSON(cmd, response)
	}
	return printLetterResponse(cmd, response)
}

// defaultMaxContextTokens pulls the budget from settings, falling back
// to the application default when settings are unavailable.
func defaultMaxContextTokens() int {
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil && settings.Retrieval.MaxContextTokens > 0 {
			return settings.Retrieval.MaxContextTokens
		}
	}
	return domain.DefaultAppSettings().Retrieval.MaxContextTokens
}

func printLetterResponse(cmd *cobra.Command, response *domain.LetterResponse) error {
	cmd.Println(response.Result.Letter)
	cmd.Println()
	cmd.Println("----------------------------------------")
	cmd.Printf("Generation: %s (model: %s)\n", response.Result.ID, response.Result.GeneratorID)
	cmd.Println()

	report := &response.Report

	cmd.Printf("Evidence strength: %s (mean score %.3f)\n", report.Strength, report.MeanScore)
	cmd.Println("Sources:")
	for i, attr := range report.Attributions {
		cmd.Printf("  [E%d] %s (%.3f) category=%s", i+1, attr.ChunkID, attr.Score, attr.Category)
		if attr.Payer != "" {
			cmd.Printf(" payer=%s", attr.Payer)
		}
		cmd.Println()
	}

	cmd.Println()
	cmd.Println("Stakeholder coverage:")
	for _, coverage := range report.Stakeholders {
		mark := "missing"
		if coverage.Covered {
			mark = "covered (" + strings.Join(coverage.MatchedTerms, ", ") + ")"
		}
		cmd.Printf("  %-9s %s\n", coverage.Stakeholder+":", mark)
	}

	if len(report.Gaps) > 0 {
		cmd.Println()
		cmd.Println("Missing elements:")
		for _, gap := range report.Gaps {
			cmd.Printf("  - %s\n", gap)
		}
	}

	if len(report.Uncertainty) > 0 {
		cmd.Println()
		cmd.Println("Uncertain statements:")
		for _, marker := range report.Uncertainty {
			cmd.Printf("  - %s (%s)\n", snippet(marker.Sentence, 100), strings.Join(marker.Terms, ", "))
		}
	}

	printWarnings(cmd, "Letter warnings:", report.LetterWarnings)
	printWarnings(cmd, "Evidence warnings:", response.EvidenceWarnings)

	return nil
}

func printWarnings(cmd *cobra.Command, header string, warnings []domain.Warning) {
	if len(warnings) == 0 {
		return
	}
	cmd.Println()
	cmd.Println(header)
	for _, w := range warnings {
		cmd.Printf("  - %s: %q at offset %d", w.Category, w.Term, w.Offset)
		if w.Source != "" {
			cmd.Printf(" (in %s)", w.Source)
		}
		cmd.Println()
	}
}
