package value

// Map is a mapping from script identifier to Raw value. Two conceptually
// distinct instances exist per run (spec.md §3): the record locals
// (persisted across steps, `$`-prefixed in script) and the temp vars
// (cleared at the start of every evaluated program). Both share this type;
// the distinction is purely in which VarTable field holds them
// (internal/interp.VarTable).
type Map map[string]Raw

// NewMap returns an empty, non-nil Map.
func NewMap() Map {
	return make(Map)
}

// Clone returns a shallow copy; Raw is an immutable value type so a shallow
// copy is a full copy.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
