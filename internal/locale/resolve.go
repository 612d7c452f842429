package locale

import "golang.org/x/text/language"

// Resolver selects the best-matching locale key from a game's available
// paragraph/resource locales for a requested target, falling back to the
// base language when nothing matches (spec.md §4.5). It wraps
// golang.org/x/text/language's tag matcher rather than hand-rolling BCP-47
// fallback-chain logic.
type Resolver struct {
	base    string
	baseTag language.Tag
	keys    []string
	matcher language.Matcher
}

// NewResolver builds a Resolver over the given base locale and the set of
// locale keys a game declares (its paras/res map keys). Keys that fail to
// parse as BCP-47 tags are dropped with no error: callers validate the game
// config's locale keys up front (internal/gameconfig) and a malformed key
// there is a config-validation concern, not a runtime one.
func NewResolver(base string, keys []string) *Resolver {
	baseTag, err := language.Parse(base)
	if err != nil {
		baseTag = language.Und
	}
	tags := make([]language.Tag, 0, len(keys)+1)
	kept := make([]string, 0, len(keys))
	tags = append(tags, baseTag)
	kept = append(kept, base)
	for _, k := range keys {
		if k == base {
			continue
		}
		t, err := language.Parse(k)
		if err != nil {
			continue
		}
		tags = append(tags, t)
		kept = append(kept, k)
	}
	return &Resolver{
		base:    base,
		baseTag: baseTag,
		keys:    kept,
		matcher: language.NewMatcher(tags),
	}
}

// Resolve picks the best of the resolver's available keys for target,
// falling back to the base locale when target fails to parse or matches
// nothing better than Und.
func (r *Resolver) Resolve(target string) string {
	tag, err := language.Parse(target)
	if err != nil {
		return r.base
	}
	_, idx, _ := r.matcher.Match(tag)
	if idx < 0 || idx >= len(r.keys) {
		return r.base
	}
	return r.keys[idx]
}

// Base returns the resolver's configured base locale key.
func (r *Resolver) Base() string { return r.base }
