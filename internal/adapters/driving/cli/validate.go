package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Scan letter text for payer-rejected language",
	Long: `Scans text for argument patterns payers reject in Letters of Medical
Necessity: convenience language, non-patient use, preference framing,
cost arguments and vague wellbeing claims.

Reads from the given file, or from stdin when no file is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	if validationService == nil {
		return errors.New("validation service not configured")
	}

	var (
		text []byte
		err  error
	)
	if len(args) == 1 {
		text, err = os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}
	} else {
		text, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
	}

	warnings := validationService.Validate(string(text))
	if len(warnings) == 0 {
		cmd.Println("No policy-language warnings.")
		return nil
	}

	cmd.Printf("%d warnings:\n", len(warnings))
	for _, w := range warnings {
		cmd.Printf("  - %s: %q at offset %d\n", w.Category, w.Term, w.Offset)
	}
	return nil
}
