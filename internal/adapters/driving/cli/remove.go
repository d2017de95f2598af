package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var removeOut string

var removeCmd = &cobra.Command{
	Use:   "remove [document] [highlight-id]",
	Short: "Remove a stored highlight from a document",
	Long: `Deletes the highlight with the given id from the document's stored set,
re-renders the remaining highlights and saves.`,
	Args: cobra.ExactArgs(2),
	RunE: runRemove,
}

func init() {
	removeCmd.Flags().StringVarP(&removeOut, "output", "o", "", "write annotated HTML to this file (default stdout)")
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	session, err := openSession(args[0])
	if err != nil {
		return err
	}
	id := args[1]

	ctx := context.Background()
	if err := session.service.Load(ctx); err != nil {
		return fmt.Errorf("failed to load highlights: %w", err)
	}
	if _, err := session.service.ApplyAll(ctx); err != nil {
		return fmt.Errorf("apply failed: %w", err)
	}

	if err := session.service.Remove(ctx, id); err != nil {
		return fmt.Errorf("failed to remove highlight: %w", err)
	}

	status := cmd.OutOrStdout()
	if removeOut == "" {
		status = cmd.ErrOrStderr()
	}
	fmt.Fprintf(status, "Removed highlight %s.\n", id)

	return session.writeOutput(cmd, removeOut)
}
