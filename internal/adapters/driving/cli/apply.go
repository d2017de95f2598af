package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/hilite-cli/internal/core/services"
)

var (
	applyOut   string
	applyJSON  bool
	applyFocus string
)

var applyCmd = &cobra.Command{
	Use:   "apply [document]",
	Short: "Re-apply stored highlights to a document",
	Long: `Loads the stored highlight set for the document, resolves each anchor
against the document's current text and writes the annotated HTML.

Anchors whose text no longer appears in the document are dropped from the
rendered output and reported; they stay in the store untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringVarP(&applyOut, "output", "o", "", "write annotated HTML to this file (default stdout)")
	applyCmd.Flags().BoolVar(&applyJSON, "json", false, "output the apply report as JSON")
	applyCmd.Flags().StringVar(&applyFocus, "focus", "", "report the block position of this highlight id")
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	session, err := openSession(args[0])
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := session.service.Load(ctx); err != nil {
		return fmt.Errorf("failed to load highlights: %w", err)
	}

	report, err := session.service.ApplyAll(ctx)
	if err != nil {
		return fmt.Errorf("apply failed: %w", err)
	}

	// The report goes to stderr when the HTML itself is on stdout.
	status := cmd.OutOrStdout()
	if applyOut == "" {
		status = cmd.ErrOrStderr()
	}

	if applyJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		fmt.Fprintln(status, string(data))
	} else {
		fmt.Fprintf(status, "Applied %d of %d highlights (%d blocks).\n",
			report.Resolved, len(session.service.List()), report.Blocks)
		if len(report.Dropped) > 0 {
			fmt.Fprintf(status, "Dropped (text not found): %s\n", strings.Join(report.Dropped, ", "))
		}
	}

	if applyFocus != "" {
		nav := services.NewNavigator(session.tree, session.settings.Navigation.Wrap, nil)
		progress, err := nav.Focus(applyFocus)
		if err != nil {
			return fmt.Errorf("focus failed: %w", err)
		}
		fmt.Fprintf(status, "Highlight %s is block %d of %d.\n", applyFocus, progress.Current, progress.Total)
	}

	return session.writeOutput(cmd, applyOut)
}
