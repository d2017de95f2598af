package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/hilite-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/hilite-cli/internal/core/domain"
)

func newSettingsService(t *testing.T) (*SettingsService, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := file.NewConfigStore(dir)
	require.NoError(t, err)
	return NewSettingsService(store), dir
}

func TestSettingsService_Get_Defaults(t *testing.T) {
	svc, _ := newSettingsService(t)

	settings, err := svc.Get()
	require.NoError(t, err)

	assert.Equal(t, domain.StoreModeSQLite, settings.Store.Mode)
	assert.True(t, settings.Navigation.Wrap)
	assert.Equal(t, "mark", settings.Marker.Tag)
	assert.Empty(t, settings.Library.Roots)
}

func TestSettingsService_Get_NilStore(t *testing.T) {
	svc := NewSettingsService(nil)

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAppSettings(), settings)
}

func TestSettingsService_SaveAndGet(t *testing.T) {
	svc, dir := newSettingsService(t)

	want := &domain.AppSettings{
		Store: domain.StoreSettings{
			Mode:     domain.StoreModeRemote,
			Endpoint: "http://localhost:8080",
			DataDir:  "/var/lib/hilite",
		},
		Library:    domain.LibrarySettings{Roots: []string{"/docs", "/books"}},
		Navigation: domain.NavigationSettings{Wrap: false},
		Marker:     domain.MarkerSettings{Tag: "em"},
	}
	require.NoError(t, svc.Save(want))

	got, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Settings survive a process restart.
	reopened, err := file.NewConfigStore(dir)
	require.NoError(t, err)
	got, err = NewSettingsService(reopened).Get()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSettingsService_SetStoreMode(t *testing.T) {
	svc, _ := newSettingsService(t)

	require.NoError(t, svc.SetStoreMode(domain.StoreModeMemory))

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.StoreModeMemory, settings.Store.Mode)
}

func TestSettingsService_SetStoreMode_Invalid(t *testing.T) {
	svc, _ := newSettingsService(t)

	err := svc.SetStoreMode(domain.StoreMode("redis"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	settings, _ := svc.Get()
	assert.Equal(t, domain.StoreModeSQLite, settings.Store.Mode)
}

func TestSettingsService_Get_IgnoresInvalidStoredMode(t *testing.T) {
	dir := t.TempDir()
	store, err := file.NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("store.mode", "floppy"))

	settings, err := NewSettingsService(store).Get()
	require.NoError(t, err)
	assert.Equal(t, domain.StoreModeSQLite, settings.Store.Mode)
}

func TestSettingsService_GetDefaults(t *testing.T) {
	svc, _ := newSettingsService(t)

	defaults := svc.GetDefaults()
	assert.Equal(t, *domain.DefaultAppSettings(), defaults)
}

func TestSettingsService_WrapFalseSurvivesOverlay(t *testing.T) {
	// A stored false must not fall back to the default true.
	svc, _ := newSettingsService(t)

	settings, err := svc.Get()
	require.NoError(t, err)
	settings.Navigation.Wrap = false
	require.NoError(t, svc.Save(settings))

	got, err := svc.Get()
	require.NoError(t, err)
	assert.False(t, got.Navigation.Wrap)
}
