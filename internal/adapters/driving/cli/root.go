// Package cli implements the hilite command line interface.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/hilite-cli/internal/adapters/driven/domtree"
	"github.com/custodia-labs/hilite-cli/internal/adapters/driven/library"
	"github.com/custodia-labs/hilite-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/hilite-cli/internal/adapters/driven/storage/remote"
	"github.com/custodia-labs/hilite-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/hilite-cli/internal/core/domain"
	"github.com/custodia-labs/hilite-cli/internal/core/ports/driven"
	"github.com/custodia-labs/hilite-cli/internal/core/ports/driving"
	"github.com/custodia-labs/hilite-cli/internal/core/services"
	"github.com/custodia-labs/hilite-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "hilite",
	Short: "Persistent text highlights for HTML documents",
	Long: `hilite anchors highlights to HTML documents by their text content,
not by markup position, so they survive document edits and re-renders.

Highlights are stored per document and re-applied on demand; overlapping
highlights are consolidated into disjoint marked blocks.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

var settingsService driving.SettingsService

// SetSettingsService injects the settings service used by all commands.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// storeOverride, when non-nil, bypasses mode selection so tests can share
// one in-memory store across command invocations.
var storeOverride driven.HighlightStore

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// openStore builds the highlight store adapter for the configured mode.
func openStore(settings *domain.AppSettings) (driven.HighlightStore, error) {
	if storeOverride != nil {
		return storeOverride, nil
	}
	switch settings.Store.Mode {
	case domain.StoreModeMemory:
		return memory.NewHighlightStore(), nil
	case domain.StoreModeSQLite:
		return sqlite.NewStore(settings.Store.DataDir)
	case domain.StoreModeRemote:
		if settings.Store.Endpoint == "" {
			return nil, errors.New("remote store mode requires store.endpoint")
		}
		return remote.New(settings.Store.Endpoint), nil
	default:
		return nil, fmt.Errorf("%w: unknown store mode %q", domain.ErrInvalidInput, settings.Store.Mode)
	}
}

// docSession bundles the parsed document tree with the highlight service
// built over it. One session per command invocation.
type docSession struct {
	path     string
	tree     *domtree.Tree
	service  driving.HighlightService
	settings *domain.AppSettings
}

// openSession parses the document at path and wires the highlight pipeline
// over it using the configured store and library roots.
func openSession(path string) (*docSession, error) {
	if settingsService == nil {
		return nil, errors.New("settings service not configured")
	}
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only handle

	tree, err := domtree.Parse(f, settings.Marker.Tag)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	store, err := openStore(settings)
	if err != nil {
		return nil, err
	}
	resolver := library.NewResolver(settings.Library.Roots)

	return &docSession{
		path:     path,
		tree:     tree,
		service:  services.NewHighlightService(tree, path, store, resolver),
		settings: settings,
	}, nil
}

// writeOutput serializes the session tree to outPath, or to the command's
// stdout when outPath is empty.
func (s *docSession) writeOutput(cmd *cobra.Command, outPath string) error {
	if outPath == "" {
		return s.tree.Render(cmd.OutOrStdout())
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := s.tree.Render(f); err != nil {
		f.Close() //nolint:errcheck,gosec // render error takes precedence
		return fmt.Errorf("failed to write output: %w", err)
	}
	return f.Close()
}
