package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/hilite-cli/internal/core/domain"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list [document]",
	Short: "List stored highlights for a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output highlights as JSON")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	session, err := openSession(args[0])
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := session.service.Load(ctx); err != nil {
		return fmt.Errorf("failed to load highlights: %w", err)
	}

	anchors := session.service.List()

	if listJSON {
		return outputListJSON(cmd, anchors)
	}
	return outputListTable(cmd, anchors)
}

func outputListJSON(cmd *cobra.Command, anchors []domain.HighlightAnchor) error {
	data, err := json.MarshalIndent(anchors, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal highlights: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputListTable(cmd *cobra.Command, anchors []domain.HighlightAnchor) error {
	if len(anchors) == 0 {
		cmd.Println("No highlights stored.")
		return nil
	}

	cmd.Printf("%d highlight(s):\n", len(anchors))
	cmd.Println()
	for i := range anchors {
		cmd.Printf("  [%d] %q\n", i+1, truncate(anchors[i].Text, 60))
		cmd.Printf("      id: %s\n", anchors[i].ID)
		if anchors[i].Prefix != "" || anchors[i].Suffix != "" {
			cmd.Printf("      context: …%s | %s…\n", anchors[i].Prefix, anchors[i].Suffix)
		}
		cmd.Println()
	}
	return nil
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}
