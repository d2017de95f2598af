package domain

const unknownDescription = "Unknown"

// StoreMode selects which highlight store backend persists anchor sets.
type StoreMode string

// Available store modes.
const (
	// StoreModeMemory keeps highlight sets for the process lifetime only.
	StoreModeMemory StoreMode = "memory"

	// StoreModeSQLite persists highlight sets in a local SQLite database.
	StoreModeSQLite StoreMode = "sqlite"

	// StoreModeRemote persists highlight sets via the HTTP key-value
	// endpoint.
	StoreModeRemote StoreMode = "remote"
)

// IsValid returns true if the store mode is recognised.
func (m StoreMode) IsValid() bool {
	switch m {
	case StoreModeMemory, StoreModeSQLite, StoreModeRemote:
		return true
	default:
		return false
	}
}

// RequiresEndpoint returns true if this mode needs an endpoint URL.
func (m StoreMode) RequiresEndpoint() bool {
	return m == StoreModeRemote
}

// String returns the string representation.
func (m StoreMode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m StoreMode) Description() string {
	switch m {
	case StoreModeMemory:
		return "Memory (session only, nothing persisted)"
	case StoreModeSQLite:
		return "SQLite (local database)"
	case StoreModeRemote:
		return "Remote (HTTP key-value endpoint)"
	default:
		return unknownDescription
	}
}

// StoreSettings holds highlight store configuration.
type StoreSettings struct {
	// Mode selects the backend.
	Mode StoreMode

	// Endpoint is the base URL of the remote key-value endpoint.
	Endpoint string

	// DataDir is the directory holding the SQLite database.
	DataDir string
}

// IsConfigured returns true if the selected backend is usable.
func (s StoreSettings) IsConfigured() bool {
	if !s.Mode.IsValid() {
		return false
	}
	if s.Mode.RequiresEndpoint() && s.Endpoint == "" {
		return false
	}
	return true
}

// LibrarySettings holds document-key resolution configuration.
type LibrarySettings struct {
	// Roots are the directories documents live under. A document's key is
	// its slash-separated path relative to the first containing root.
	// Documents outside every root have no key and are never persisted.
	Roots []string
}

// NavigationSettings holds highlight navigation configuration.
type NavigationSettings struct {
	// Wrap makes next/previous wrap around at the ends. Default true.
	Wrap bool
}

// MarkerSettings holds marker rendering configuration.
type MarkerSettings struct {
	// Tag is the element name used for rendered markers. Default "mark".
	Tag string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Store holds highlight store settings.
	Store StoreSettings

	// Library holds document-key resolution settings.
	Library LibrarySettings

	// Navigation holds navigation settings.
	Navigation NavigationSettings

	// Marker holds marker rendering settings.
	Marker MarkerSettings
}

// DefaultAppSettings returns the settings used when nothing is configured.
func DefaultAppSettings() *AppSettings {
	return &AppSettings{
		Store:      StoreSettings{Mode: StoreModeSQLite},
		Navigation: NavigationSettings{Wrap: true},
		Marker:     MarkerSettings{Tag: "mark"},
	}
}
