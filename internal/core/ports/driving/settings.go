package driving

import "github.com/custodia-labs/hilite-cli/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetStoreMode updates the highlight store backend.
	SetStoreMode(mode domain.StoreMode) error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
