// Package cli provides the cobra command tree for the lomn binary.
// Commands talk to the core exclusively through driving ports; wiring
// happens in cmd/lomn via SetServices.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/lomnlabs/lomn-cli/internal/core/ports/driving"
	"github.com/lomnlabs/lomn-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services holds the driving ports the commands run against.
type Services struct {
	Ingest     driving.IngestService
	Retrieval  driving.RetrievalService
	Validation driving.ValidationService
	Letter     driving.LetterService
	Settings   driving.SettingsService

	// PersistIndex writes the current vector index artifacts to disk.
	// Called after commands that mutate the index. Optional.
	PersistIndex func() error
}

var (
	ingestService     driving.IngestService
	retrievalService  driving.RetrievalService
	validationService driving.ValidationService
	letterService     driving.LetterService
	settingsService   driving.SettingsService
	persistIndex      func() error

	verboseFlag bool
)

// SetServices wires the core services into the command tree.
func SetServices(services *Services) {
	ingestService = services.Ingest
	retrievalService = services.Retrieval
	validationService = services.Validation
	letterService = services.Letter
	settingsService = services.Settings
	persistIndex = services.PersistIndex
}

var rootCmd = &cobra.Command{
	Use:   "lomn",
	Short: "Evidence-grounded Letters of Medical Necessity",
	Long: `lomn drafts Letters of Medical Necessity grounded in your own
evidence corpus: approved and denied precedent letters, payer policy
excerpts and clinical guidelines.

Ingest evidence documents, then draft letters for new patient cases with
full source attribution and policy-language validation.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false,
		"print pipeline details to stderr")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// savePersistedIndex flushes index artifacts after a mutating command.
func savePersistedIndex(cmd *cobra.Command) {
	if persistIndex == nil {
		return
	}
	if err := persistIndex(); err != nil {
		cmd.PrintErrf("Warning: failed to persist index: %v\n", err)
	}
}
