package playback_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayaka-run/ayaka/internal/playback"
	"github.com/ayaka-run/ayaka/internal/value"
)

const twoParaGameYAML = `
title: Demo
base_lang: en
plugins:
  dir: plugins
paras:
  en:
    - tag: start
      texts: ["hi $name", "second line"]
      next: end
    - tag: end
      texts: ["the end"]
  ja:
    - tag: start
      texts: ["konnichiwa $name"]
`

func writeTestGame(t *testing.T, yaml string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "plugins"), 0o755))
	path := filepath.Join(dir, "game.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

func openEngine(t *testing.T, yaml string) *playback.Engine {
	t.Helper()
	path := writeTestGame(t, yaml)
	eng, err := playback.Open(context.Background(), path, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close(context.Background()) })
	return eng
}

// scenario 5 from spec.md §8: walk a two-paragraph graph to the end.
func TestNextRunWalksTwoParagraphsToEnd(t *testing.T) {
	eng := openEngine(t, twoParaGameYAML)
	eng.InitContext(playback.RawContext{
		CurPara: "start",
		Locals:  value.Map{"name": value.Str("Ada")},
	})

	a1, ok, err := eng.NextRun(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, a1.Line, 1)
	assert.Equal(t, "hi Ada", a1.Line[0].Chars)

	a2, ok, err := eng.NextRun(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second line", a2.Line[0].Chars)

	a3, ok, err := eng.NextRun(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "the end", a3.Line[0].Chars)

	_, ok, err = eng.NextRun(context.Background())
	require.NoError(t, err)
	assert.False(t, ok, "game should have ended: no further paragraph and no more text")
}

// scenario 6 from spec.md §8: a locale missing a text index falls back to
// the base-language text at that index.
func TestNextRunFallsBackToBaseLocaleText(t *testing.T) {
	eng := openEngine(t, twoParaGameYAML)
	eng.SetSettings(playback.Settings{Locale: "ja"})
	eng.InitContext(playback.RawContext{
		CurPara: "start",
		Locals:  value.Map{"name": value.Str("Ada")},
	})

	a1, ok, err := eng.NextRun(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "konnichiwa Ada", a1.Line[0].Chars)

	// ja's "start" has only one text; index 1 falls back to en's.
	a2, ok, err := eng.NextRun(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second line", a2.Line[0].Chars)
}

// spec.md §8: "next_run then next_back_run leaves position unchanged".
func TestNextRunThenNextBackRunLeavesPositionUnchanged(t *testing.T) {
	eng := openEngine(t, twoParaGameYAML)
	eng.InitNew()
	before := eng.Record()

	produced, ok, err := eng.NextRun(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	popped, ok := eng.NextBackRun()
	require.True(t, ok)
	assert.Equal(t, produced, popped)

	after := eng.Record()
	assert.Equal(t, before.CurPara, after.CurPara)
	assert.Equal(t, before.CurAct, after.CurAct)
	assert.Empty(t, after.History)
}

const loopGameYAML = `
title: Loop
base_lang: en
plugins:
  dir: plugins
paras:
  en:
    - tag: loop
      texts: ["only"]
      next: loop
`

func TestCurrentVisitedDetectsRepeatedPosition(t *testing.T) {
	eng := openEngine(t, loopGameYAML)
	eng.InitNew()

	_, ok, err := eng.NextRun(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, eng.CurrentVisited())

	_, ok, err = eng.NextRun(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, eng.CurrentVisited(), "looping back to (loop, 0) should be detected as visited")
}

func TestInfoReportsTitleAndLocales(t *testing.T) {
	eng := openEngine(t, twoParaGameYAML)
	info := eng.Info()
	assert.Equal(t, "Demo", info.Title)
	assert.Equal(t, "en", info.BaseLang)
	assert.ElementsMatch(t, []string{"en", "ja"}, info.Locales)
}

func TestChooseLocaleReturnsBestMatchOfFirstPreference(t *testing.T) {
	eng := openEngine(t, twoParaGameYAML)

	got, ok := eng.ChooseLocale([]string{"ja-JP", "en"})
	require.True(t, ok)
	assert.Equal(t, "ja", got)

	_, ok = eng.ChooseLocale(nil)
	assert.False(t, ok)
}

func TestHistoryIsReverseChronological(t *testing.T) {
	eng := openEngine(t, twoParaGameYAML)
	eng.InitNew()

	a1, _, _ := eng.NextRun(context.Background())
	a2, _, _ := eng.NextRun(context.Background())

	hist := eng.History()
	require.Len(t, hist, 2)
	assert.Equal(t, *a2, hist[0])
	assert.Equal(t, *a1, hist[1])
}
