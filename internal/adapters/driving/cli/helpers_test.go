package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/hilite-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/hilite-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/hilite-cli/internal/core/domain"
	"github.com/custodia-labs/hilite-cli/internal/core/services"
)

const testDocHTML = "<html><body>" +
	"<p>The quick brown fox jumps over the lazy dog.</p> " +
	"<p>Pack my box with <b>five dozen</b> liquor jugs.</p>" +
	"</body></html>"

// setupTestServices wires the commands against a temp library root, a
// TOML config in a temp dir and a shared in-memory highlight store.
// It returns the path of a test document inside the root and a cleanup.
func setupTestServices(t *testing.T) (string, func()) {
	t.Helper()

	root := t.TempDir()
	docPath := filepath.Join(root, "doc.html")
	require.NoError(t, os.WriteFile(docPath, []byte(testDocHTML), 0600))

	configStore, err := file.NewConfigStore(t.TempDir())
	require.NoError(t, err)
	svc := services.NewSettingsService(configStore)
	require.NoError(t, svc.Save(&domain.AppSettings{
		Store:      domain.StoreSettings{Mode: domain.StoreModeMemory},
		Library:    domain.LibrarySettings{Roots: []string{root}},
		Navigation: domain.NavigationSettings{Wrap: true},
		Marker:     domain.MarkerSettings{Tag: "mark"},
	}))

	prevSettings := settingsService
	prevStore := storeOverride
	settingsService = svc
	storeOverride = memory.NewHighlightStore()

	return docPath, func() {
		settingsService = prevSettings
		storeOverride = prevStore
		resetFlags()
	}
}

// resetFlags clears package-level flag state carried between executions.
func resetFlags() {
	verbose = false
	addText, addOccurrence, addOut = "", 1, ""
	removeOut = ""
	applyOut, applyJSON, applyFocus = "", false, ""
	listJSON = false
	quoteText, quoteOccurrence, quoteJSON = "", 1, false
}

// runCommand executes the root command with args and captures stdout and
// stderr separately.
func runCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	out := new(bytes.Buffer)
	errOut := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}
