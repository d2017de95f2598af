package cli

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/hilite-cli/internal/adapters/driving/tui"
	"github.com/custodia-labs/hilite-cli/internal/core/services"
)

var readFocus string

var readCmd = &cobra.Command{
	Use:   "read [document]",
	Short: "Read a document in the interactive terminal reader",
	Long: `Opens the document in a terminal reader with its stored highlights
applied.

Controls:
  j/k, ↑/↓ - Scroll
  n/p      - Next / previous highlight
  a        - Add a highlight
  d        - Delete the focused highlight
  y        - Copy a citation link
  ?        - Toggle help
  q        - Quit`,
	Args: cobra.ExactArgs(1),
	RunE: runRead,
}

func init() {
	readCmd.Flags().StringVar(&readFocus, "focus", "", "highlight id to jump to on startup")
	rootCmd.AddCommand(readCmd)
}

func runRead(cmd *cobra.Command, args []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in reader: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

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

	ports := &tui.Ports{
		Highlights: session.service,
		Navigator:  services.NewNavigator(session.tree, session.settings.Navigation.Wrap, nil),
		Quotes:     services.NewQuoteService(session.tree, session.path),
		Tree:       session.tree,
		Title:      session.path,
		FocusID:    readFocus,
	}

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create reader: %w", err)
	}
	app.WithContext(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("reader error: %w", err)
	}

	return nil
}
