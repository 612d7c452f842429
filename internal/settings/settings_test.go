package settings_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayaka-run/ayaka/internal/settings"
)

type demoSettings struct {
	Locale string `json:"locale"`
	Volume int    `json:"volume"`
}

func TestSaveFileThenLoadFileRoundTrips(t *testing.T) {
	m, err := settings.NewFileManager(t.TempDir())
	require.NoError(t, err)

	path := m.SettingsPath()
	want := demoSettings{Locale: "ja", Volume: 80}
	require.NoError(t, settings.SaveFile(m, path, want, true))

	got, err := settings.LoadFile[demoSettings](m, path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadFileOnMissingPathReturnsError(t *testing.T) {
	m, err := settings.NewFileManager(t.TempDir())
	require.NoError(t, err)

	_, err = settings.LoadFile[demoSettings](m, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRecordsPathListsInAscendingSlotOrder(t *testing.T) {
	m, err := settings.NewFileManager(t.TempDir())
	require.NoError(t, err)

	for _, idx := range []int{2, 0, 1} {
		require.NoError(t, settings.SaveFile(m, m.RecordPath("Demo Game", idx), demoSettings{Locale: "en"}, false))
	}

	paths, err := m.RecordsPath("Demo Game")
	require.NoError(t, err)
	require.Len(t, paths, 3)
	assert.Equal(t, m.RecordPath("Demo Game", 0), paths[0])
	assert.Equal(t, m.RecordPath("Demo Game", 1), paths[1])
	assert.Equal(t, m.RecordPath("Demo Game", 2), paths[2])
}

func TestRecordsPathOnUnsavedGameReturnsEmpty(t *testing.T) {
	m, err := settings.NewFileManager(t.TempDir())
	require.NoError(t, err)

	paths, err := m.RecordsPath("Never Saved")
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestGlobalRecordPathIsStableAcrossGameTitleSanitization(t *testing.T) {
	m, err := settings.NewFileManager(t.TempDir())
	require.NoError(t, err)

	p1 := m.GlobalRecordPath("My Game!")
	p2 := m.GlobalRecordPath("My Game!")
	assert.Equal(t, p1, p2)
	assert.NotContains(t, filepath.Base(filepath.Dir(p1)), "!")
}
