package value

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// EncodeMsgpack and DecodeMsgpack let Raw cross the plugin ABI (internal/abi)
// as a self-describing MessagePack scalar rather than a wrapper struct: Unit
// encodes as nil, and Bool/Num/Str encode as their native msgpack types. This
// mirrors the original Rust runtime's derive(Serialize) for an untagged enum.
var (
	_ msgpack.CustomEncoder = Raw{}
	_ msgpack.CustomDecoder = (*Raw)(nil)
)

func (v Raw) EncodeMsgpack(enc *msgpack.Encoder) error {
	switch v.typ {
	case TypeUnit:
		return enc.EncodeNil()
	case TypeBool:
		return enc.EncodeBool(v.b)
	case TypeNum:
		return enc.EncodeInt64(v.n)
	case TypeStr:
		return enc.EncodeString(v.s)
	default:
		return fmt.Errorf("value: cannot encode invalid type %d", v.typ)
	}
}

func (v *Raw) DecodeMsgpack(dec *msgpack.Decoder) error {
	code, err := dec.PeekCode()
	if err != nil {
		return err
	}
	switch {
	case msgpack.IsNilCode(code):
		if err := dec.DecodeNil(); err != nil {
			return err
		}
		*v = Unit
		return nil
	}

	raw, err := dec.DecodeInterface()
	if err != nil {
		return err
	}
	switch t := raw.(type) {
	case nil:
		*v = Unit
	case bool:
		*v = Bool(t)
	case int64:
		*v = Num(t)
	case uint64:
		*v = Num(int64(t))
	case int8:
		*v = Num(int64(t))
	case int16:
		*v = Num(int64(t))
	case int32:
		*v = Num(int64(t))
	case string:
		*v = Str(t)
	default:
		return fmt.Errorf("value: unexpected msgpack type %T for RawValue", t)
	}
	return nil
}
