package gameconfig_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayaka-run/ayaka/internal/gameconfig"
)

const validYAML = `
title: Demo Game
author: Ada
base_lang: en
plugins:
  dir: plugins
paras:
  en:
    - tag: start
      texts: ["hi $name"]
      next: end
    - tag: end
      texts: []
res:
  en:
    title_image: cover.png
`

func writeGame(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "game.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadValidGame(t *testing.T) {
	dir := t.TempDir()
	path := writeGame(t, dir, validYAML)

	game, err := gameconfig.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Demo Game", game.Title)
	assert.Equal(t, "en", game.BaseLang)
	assert.Len(t, game.Paras["en"], 2)
}

func TestLoadRejectsDanglingNext(t *testing.T) {
	dir := t.TempDir()
	path := writeGame(t, dir, `
title: Broken
base_lang: en
plugins:
  dir: plugins
paras:
  en:
    - tag: start
      texts: ["hi"]
      next: nowhere
`)
	_, err := gameconfig.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dangling next")
}

func TestLoadRejectsMissingBaseLangParagraphs(t *testing.T) {
	dir := t.TempDir()
	path := writeGame(t, dir, `
title: Broken
base_lang: en
plugins:
  dir: plugins
paras:
  ja:
    - tag: start
      texts: ["hi"]
`)
	_, err := gameconfig.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base_lang")
}

func TestLoadRejectsInvalidLocaleTag(t *testing.T) {
	dir := t.TempDir()
	path := writeGame(t, dir, `
title: Broken
base_lang: "!!!not-a-locale!!!"
plugins:
  dir: plugins
paras:
  en:
    - tag: start
      texts: ["hi"]
`)
	_, err := gameconfig.Load(path)
	require.Error(t, err)
}
