package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/hilite-cli/internal/core/services"
)

var (
	quoteText       string
	quoteOccurrence int
	quoteJSON       bool
)

var quoteCmd = &cobra.Command{
	Use:   "quote [document]",
	Short: "Capture a citation for a text selection",
	Long: `Locates the given text in the document and builds a portable citation:
the plain text, a Markdown rendering that preserves inline formatting and
links, and a text-fragment deep link (#:~:text=...) to the selection.

Nothing is stored; quote is a read-only operation.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuote,
}

func init() {
	quoteCmd.Flags().StringVarP(&quoteText, "text", "t", "", "text to quote (required)")
	quoteCmd.Flags().IntVar(&quoteOccurrence, "occurrence", 1, "which occurrence of the text to quote")
	quoteCmd.Flags().BoolVar(&quoteJSON, "json", false, "output the quote as JSON")
	quoteCmd.MarkFlagRequired("text") //nolint:errcheck,gosec // flag exists
	rootCmd.AddCommand(quoteCmd)
}

func runQuote(cmd *cobra.Command, args []string) error {
	session, err := openSession(args[0])
	if err != nil {
		return err
	}

	quotes := services.NewQuoteService(session.tree, session.path)
	quote, err := quotes.Capture(quoteText, quoteOccurrence)
	if err != nil {
		return fmt.Errorf("quote failed: %w", err)
	}

	if quoteJSON {
		data, err := json.MarshalIndent(quote, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal quote: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Text:     %s\n", quote.PlainText)
	cmd.Printf("Markdown: %s\n", quote.MarkdownText)
	cmd.Printf("Link:     %s\n", quote.FragmentURL)
	return nil
}
