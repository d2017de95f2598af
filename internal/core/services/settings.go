package services

import (
	"fmt"

	"github.com/custodia-labs/hilite-cli/internal/core/domain"
	"github.com/custodia-labs/hilite-cli/internal/core/ports/driven"
	"github.com/custodia-labs/hilite-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyStoreMode     = "store.mode"
	keyStoreEndpoint = "store.endpoint"
	keyStoreDataDir  = "store.data_dir"
	keyLibraryRoots  = "library.roots"
	keyNavWrap       = "navigation.wrap"
	keyMarkerTag     = "marker.tag"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings, overlaying stored values on
// the defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()
	if s.configStore == nil {
		return defaults, nil
	}

	settings := &domain.AppSettings{
		Store: domain.StoreSettings{
			Mode:     s.getStoreMode(defaults.Store.Mode),
			Endpoint: s.configStore.GetString(keyStoreEndpoint),
			DataDir:  s.configStore.GetString(keyStoreDataDir),
		},
		Library: domain.LibrarySettings{
			Roots: s.configStore.GetStringSlice(keyLibraryRoots),
		},
		Navigation: domain.NavigationSettings{
			Wrap: s.getBool(keyNavWrap, defaults.Navigation.Wrap),
		},
		Marker: domain.MarkerSettings{
			Tag: s.getString(keyMarkerTag, defaults.Marker.Tag),
		},
	}
	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := s.configStore.Set(keyStoreMode, settings.Store.Mode.String()); err != nil {
		return fmt.Errorf("save store mode: %w", err)
	}
	if err := s.configStore.Set(keyStoreEndpoint, settings.Store.Endpoint); err != nil {
		return fmt.Errorf("save store endpoint: %w", err)
	}
	if err := s.configStore.Set(keyStoreDataDir, settings.Store.DataDir); err != nil {
		return fmt.Errorf("save store data_dir: %w", err)
	}
	if err := s.configStore.Set(keyLibraryRoots, settings.Library.Roots); err != nil {
		return fmt.Errorf("save library roots: %w", err)
	}
	if err := s.configStore.Set(keyNavWrap, settings.Navigation.Wrap); err != nil {
		return fmt.Errorf("save navigation wrap: %w", err)
	}
	if err := s.configStore.Set(keyMarkerTag, settings.Marker.Tag); err != nil {
		return fmt.Errorf("save marker tag: %w", err)
	}
	return nil
}

// SetStoreMode updates the highlight store backend.
func (s *SettingsService) SetStoreMode(mode domain.StoreMode) error {
	if !mode.IsValid() {
		return fmt.Errorf("invalid store mode %q: %w", mode, domain.ErrInvalidInput)
	}
	return s.configStore.Set(keyStoreMode, mode.String())
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return *domain.DefaultAppSettings()
}

func (s *SettingsService) getStoreMode(fallback domain.StoreMode) domain.StoreMode {
	raw := s.configStore.GetString(keyStoreMode)
	if raw == "" {
		return fallback
	}
	mode := domain.StoreMode(raw)
	if !mode.IsValid() {
		return fallback
	}
	return mode
}

func (s *SettingsService) getString(key, fallback string) string {
	if v := s.configStore.GetString(key); v != "" {
		return v
	}
	return fallback
}

func (s *SettingsService) getBool(key string, fallback bool) bool {
	if _, ok := s.configStore.Get(key); !ok {
		return fallback
	}
	return s.configStore.GetBool(key)
}
