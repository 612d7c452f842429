package playback

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ayaka-run/ayaka/internal/ast"
)

// textCacheSize bounds the compiled-Text LRU cache. hashicorp/golang-lru is
// only an indirect dependency in the teacher's go.mod (no teacher file
// imports it directly) — documented in DESIGN.md; this is the one place in
// the module that exercises it directly, for the cache spec.md §4.6 step 3
// asks for: "(cached by (paragraph-tag, locale, i))".
const textCacheSize = 512

type textCacheKey struct {
	tag    string
	locale string
	index  int
}

func newTextCache() *lru.Cache[textCacheKey, *ast.Text] {
	c, err := lru.New[textCacheKey, *ast.Text](textCacheSize)
	if err != nil {
		panic("playback: bad text cache size: " + err.Error())
	}
	return c
}
