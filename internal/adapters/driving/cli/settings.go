package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/hilite-cli/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the highlight store, library roots and other options.

Keys:
  store.mode       - highlight store backend (memory, sqlite, remote)
  store.endpoint   - base URL for the remote store
  store.data_dir   - directory for the sqlite store
  library.roots    - comma-separated document library roots
  navigation.wrap  - wrap around when stepping past the last highlight
  marker.tag       - element name used for rendered markers`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one setting value",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set one setting value",
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Store]")
	cmd.Printf("  Mode: %s\n", settings.Store.Mode.Description())
	if settings.Store.Mode.RequiresEndpoint() {
		endpoint := settings.Store.Endpoint
		if endpoint == "" {
			endpoint = "(not set)"
		}
		cmd.Printf("  Endpoint: %s\n", endpoint)
	}
	if settings.Store.Mode == domain.StoreModeSQLite && settings.Store.DataDir != "" {
		cmd.Printf("  Data dir: %s\n", settings.Store.DataDir)
	}
	cmd.Println()

	cmd.Println("[Library]")
	if len(settings.Library.Roots) == 0 {
		cmd.Println("  Roots: (none; highlights stay session-local)")
	} else {
		for _, root := range settings.Library.Roots {
			cmd.Printf("  Root: %s\n", root)
		}
	}
	cmd.Println()

	cmd.Println("[Navigation]")
	cmd.Printf("  Wrap: %t\n", settings.Navigation.Wrap)
	cmd.Println()

	cmd.Println("[Marker]")
	cmd.Printf("  Tag: %s\n", settings.Marker.Tag)

	if settings.Store.Mode.RequiresEndpoint() && settings.Store.Endpoint == "" {
		cmd.Println()
		cmd.Println("Warning: remote store mode needs store.endpoint.")
		cmd.Println("Run 'hilite settings set store.endpoint <url>' to fix.")
	}

	return nil
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	switch args[0] {
	case "store.mode":
		cmd.Println(settings.Store.Mode.String())
	case "store.endpoint":
		cmd.Println(settings.Store.Endpoint)
	case "store.data_dir":
		cmd.Println(settings.Store.DataDir)
	case "library.roots":
		cmd.Println(strings.Join(settings.Library.Roots, ","))
	case "navigation.wrap":
		cmd.Println(strconv.FormatBool(settings.Navigation.Wrap))
	case "marker.tag":
		cmd.Println(settings.Marker.Tag)
	default:
		return fmt.Errorf("unknown setting %q", args[0])
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	key, value := args[0], args[1]
	switch key {
	case "store.mode":
		mode := domain.StoreMode(value)
		if !mode.IsValid() {
			return fmt.Errorf("invalid store mode %q (memory, sqlite, remote)", value)
		}
		settings.Store.Mode = mode
	case "store.endpoint":
		settings.Store.Endpoint = value
	case "store.data_dir":
		settings.Store.DataDir = value
	case "library.roots":
		settings.Library.Roots = splitRoots(value)
	case "navigation.wrap":
		wrap, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean %q for navigation.wrap", value)
		}
		settings.Navigation.Wrap = wrap
	case "marker.tag":
		if value == "" {
			return errors.New("marker.tag must not be empty")
		}
		settings.Marker.Tag = value
	default:
		return fmt.Errorf("unknown setting %q", key)
	}

	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Printf("Set %s to %s\n", key, value)
	return nil
}

func splitRoots(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	roots := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			roots = append(roots, trimmed)
		}
	}
	return roots
}
