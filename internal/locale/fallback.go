// Package locale resolves a requested locale tag against a set of available
// keys with fallback to a game's declared base language (spec.md §4.5).
package locale

// Fallback pairs a primary lookup with its base-language fallback. Primary
// is nil when the resolved key equals the base key (looking a value up
// twice under the same key would be redundant). Consumers read Primary
// first and fall back to Fallback field-by-field for anything Primary
// leaves unset.
type Fallback[T any] struct {
	Primary  *T
	Fallback *T
}

// NewFallback builds a Fallback from a lookup function, given the resolved
// key and the base key. If the keys are equal, Primary is left nil.
func NewFallback[T any](resolvedKey, baseKey string, lookup func(key string) (T, bool)) Fallback[T] {
	var fb Fallback[T]
	if v, ok := lookup(baseKey); ok {
		fb.Fallback = &v
	}
	if resolvedKey == baseKey {
		return fb
	}
	if v, ok := lookup(resolvedKey); ok {
		fb.Primary = &v
	}
	return fb
}
