package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/hilite-cli/internal/core/domain"
)

var (
	addText       string
	addOccurrence int
	addOut        string
)

var addCmd = &cobra.Command{
	Use:   "add [document]",
	Short: "Highlight a text selection in a document",
	Long: `Captures a highlight anchor for the given text, renders it into the
document and saves the updated highlight set.

When the text appears more than once, --occurrence selects which match to
highlight (1-based, document order). The surrounding context is stored with
the anchor so the same occurrence is found again after document edits.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&addText, "text", "t", "", "text to highlight (required)")
	addCmd.Flags().IntVar(&addOccurrence, "occurrence", 1, "which occurrence of the text to highlight")
	addCmd.Flags().StringVarP(&addOut, "output", "o", "", "write annotated HTML to this file (default stdout)")
	addCmd.MarkFlagRequired("text") //nolint:errcheck,gosec // flag exists
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	if addText == "" {
		return errors.New("--text must not be empty")
	}

	session, err := openSession(args[0])
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := session.service.Load(ctx); err != nil {
		return fmt.Errorf("failed to load highlights: %w", err)
	}
	if _, err := session.service.ApplyAll(ctx); err != nil {
		return fmt.Errorf("apply failed: %w", err)
	}

	anchor, err := session.service.Add(ctx, addText, addOccurrence)
	if err != nil {
		return fmt.Errorf("failed to add highlight: %w", err)
	}

	status := cmd.OutOrStdout()
	if addOut == "" {
		status = cmd.ErrOrStderr()
	}
	fmt.Fprintf(status, "Added highlight %s.\n", anchor.ID)
	if _, err := session.service.Key(); errors.Is(err, domain.ErrNoDocumentKey) {
		fmt.Fprintln(status, "Note: document is outside the library roots; highlight not persisted.")
	}

	return session.writeOutput(cmd, addOut)
}
