package viewmodel_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayaka-run/ayaka/internal/playback"
	"github.com/ayaka-run/ayaka/internal/viewmodel"
)

const demoGameYAML = `
title: Demo
base_lang: en
plugins:
  dir: plugins
paras:
  en:
    - tag: start
      texts: ["hi $name", "second line"]
`

func writeDemoGame(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "plugins"), 0o755))
	path := filepath.Join(dir, "game.yaml")
	require.NoError(t, os.WriteFile(path, []byte(demoGameYAML), 0o644))
	return path
}

func TestCommandsBeforeOpenGameReturnBadArgument(t *testing.T) {
	vm, err := viewmodel.New(t.TempDir(), writeDemoGame(t), nil)
	require.NoError(t, err)

	_, err = vm.GetSettings()
	require.Error(t, err)

	_, err = vm.Info()
	require.Error(t, err)

	_, err = vm.NextRun(context.Background())
	require.Error(t, err)
}

func TestOpenGameEmitsStagedProgressInOrder(t *testing.T) {
	vm, err := viewmodel.New(t.TempDir(), writeDemoGame(t), nil)
	require.NoError(t, err)

	var stages []string
	err = vm.OpenGame(context.Background(), func(st viewmodel.OpenStatus) {
		switch st.(type) {
		case viewmodel.LoadProfileStatus:
			stages = append(stages, "profile")
		case viewmodel.CreateRuntimeStatus:
			stages = append(stages, "runtime")
		case viewmodel.LoadSettingsStatus:
			stages = append(stages, "settings")
		case viewmodel.LoadGlobalRecordsStatus:
			stages = append(stages, "global")
		case viewmodel.LoadRecordsStatus:
			stages = append(stages, "records")
		case viewmodel.LoadedStatus:
			stages = append(stages, "loaded")
		}
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"profile", "runtime", "settings", "global", "records", "loaded"}, stages)

	info, err := vm.Info()
	require.NoError(t, err)
	assert.Equal(t, "Demo", info.Title)
}

func TestSetSettingsPersistsAcrossReopen(t *testing.T) {
	ident := t.TempDir()
	config := writeDemoGame(t)

	vm1, err := viewmodel.New(ident, config, nil)
	require.NoError(t, err)
	require.NoError(t, vm1.OpenGame(context.Background(), nil))
	require.NoError(t, vm1.SetSettings(playback.Settings{Locale: "fr"}))
	require.NoError(t, vm1.Close(context.Background()))

	vm2, err := viewmodel.New(ident, config, nil)
	require.NoError(t, err)
	require.NoError(t, vm2.OpenGame(context.Background(), nil))
	t.Cleanup(func() { _ = vm2.Close(context.Background()) })

	got, err := vm2.GetSettings()
	require.NoError(t, err)
	assert.Equal(t, "fr", got.Locale)
}

func TestStartNewNextRunAndHistory(t *testing.T) {
	vm, err := viewmodel.New(t.TempDir(), writeDemoGame(t), nil)
	require.NoError(t, err)
	require.NoError(t, vm.OpenGame(context.Background(), nil))
	t.Cleanup(func() { _ = vm.Close(context.Background()) })

	require.NoError(t, vm.StartNew("en"))

	ok, err := vm.NextRun(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	action := vm.CurrentRun()
	require.NotNil(t, action)
	require.Len(t, action.Line, 1)
	assert.Contains(t, action.Line[0].Chars, "hi")

	ok, err = vm.NextRun(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	hist, err := vm.History()
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, "second line", hist[0].Line[0].Chars)
}

func TestSwitchRejectsOutOfRangeIndex(t *testing.T) {
	vm, err := viewmodel.New(t.TempDir(), writeDemoGame(t), nil)
	require.NoError(t, err)
	require.NoError(t, vm.OpenGame(context.Background(), nil))
	t.Cleanup(func() { _ = vm.Close(context.Background()) })

	require.NoError(t, vm.StartNew("en"))
	_, err = vm.NextRun(context.Background())
	require.NoError(t, err)

	_, err = vm.Switch(context.Background(), 0)
	assert.Error(t, err)
}

func TestSaveRecordToThenStartRecordResumesPosition(t *testing.T) {
	ident := t.TempDir()
	config := writeDemoGame(t)

	vm1, err := viewmodel.New(ident, config, nil)
	require.NoError(t, err)
	require.NoError(t, vm1.OpenGame(context.Background(), nil))
	require.NoError(t, vm1.StartNew("en"))
	_, err = vm1.NextRun(context.Background())
	require.NoError(t, err)
	require.NoError(t, vm1.SaveRecordTo(0))
	require.NoError(t, vm1.Close(context.Background()))

	vm2, err := viewmodel.New(ident, config, nil)
	require.NoError(t, err)
	require.NoError(t, vm2.OpenGame(context.Background(), nil))
	t.Cleanup(func() { _ = vm2.Close(context.Background()) })

	records := vm2.GetRecords()
	require.Len(t, records, 1)
	assert.Equal(t, "start", records[0].CurPara)
	assert.Equal(t, 1, records[0].CurAct)

	require.NoError(t, vm2.StartRecord("en", 0))
	ok, err := vm2.NextRun(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	action := vm2.CurrentRun()
	require.NotNil(t, action)
	assert.Equal(t, "second line", action.Line[0].Chars)
}
