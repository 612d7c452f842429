package value

import (
	"encoding/json"
	"fmt"
)

// jsonRaw is the tagged on-disk form used for save-file records
// (internal/playback.RawContext), which must round-trip exactly (spec.md §8):
// deserialize(serialize(rc)) == rc. A bare JSON scalar cannot distinguish
// Bool(false) from Unit or Num(0) from Str("0"), so the tag is explicit.
type jsonRaw struct {
	T string `json:"t"`
	V any    `json:"v,omitempty"`
}

func (v Raw) MarshalJSON() ([]byte, error) {
	switch v.typ {
	case TypeUnit:
		return json.Marshal(jsonRaw{T: "unit"})
	case TypeBool:
		return json.Marshal(jsonRaw{T: "bool", V: v.b})
	case TypeNum:
		return json.Marshal(jsonRaw{T: "num", V: v.n})
	case TypeStr:
		return json.Marshal(jsonRaw{T: "str", V: v.s})
	default:
		return nil, fmt.Errorf("value: cannot marshal invalid type %d", v.typ)
	}
}

func (v *Raw) UnmarshalJSON(data []byte) error {
	var jr jsonRaw
	if err := json.Unmarshal(data, &jr); err != nil {
		return err
	}
	switch jr.T {
	case "unit", "":
		*v = Unit
	case "bool":
		b, _ := jr.V.(bool)
		*v = Bool(b)
	case "num":
		// Num(0) is written without "v" (omitempty), so a missing payload is 0.
		n, ok := jr.V.(float64)
		if !ok && jr.V != nil {
			return fmt.Errorf("value: bad num payload %v", jr.V)
		}
		*v = Num(int64(n))
	case "str":
		s, _ := jr.V.(string)
		*v = Str(s)
	default:
		return fmt.Errorf("value: unknown tag %q", jr.T)
	}
	return nil
}

// FromInterface converts a value decoded generically from YAML/JSON (as
// produced by goccy/go-yaml when no static type is known, e.g. Game.Res
// entries) into a Raw. Used instead of a custom goccy unmarshaler hook so
// that gameconfig decoding stays on the library's plain interface{} path.
func FromInterface(x any) Raw {
	switch t := x.(type) {
	case nil:
		return Unit
	case bool:
		return Bool(t)
	case string:
		return Str(t)
	case int:
		return Num(int64(t))
	case int64:
		return Num(t)
	case uint64:
		return Num(int64(t))
	case float64:
		return Num(int64(t))
	case float32:
		return Num(int64(t))
	default:
		return Unit
	}
}
