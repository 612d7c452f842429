package value_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayaka-run/ayaka/internal/value"
)

func TestCoercion(t *testing.T) {
	assert.Equal(t, int64(1), value.Bool(true).GetNum())
	assert.Equal(t, int64(0), value.Bool(false).GetNum())
	assert.Equal(t, "5", value.Num(5).GetStr())
	assert.True(t, value.Str("x").GetBool())
	assert.False(t, value.Str("").GetBool())
	assert.False(t, value.Unit.GetBool())
}

func TestTypeOrdering(t *testing.T) {
	assert.True(t, value.TypeUnit < value.TypeBool)
	assert.True(t, value.TypeBool < value.TypeNum)
	assert.True(t, value.TypeNum < value.TypeStr)
}

func TestEqualUnit(t *testing.T) {
	assert.True(t, value.Unit.Equal(value.Unit))
	assert.False(t, value.Unit.Less(value.Unit))
}

func TestJSONRoundTrip(t *testing.T) {
	for _, v := range []value.Raw{value.Unit, value.Bool(true), value.Bool(false), value.Num(-42), value.Str("hi")} {
		data, err := json.Marshal(v)
		require.NoError(t, err)

		var got value.Raw
		require.NoError(t, json.Unmarshal(data, &got))
		assert.True(t, v.Equal(got), "round trip mismatch for %v -> %s -> %v", v, data, got)
		assert.Equal(t, v.Type(), got.Type())
	}
}

func TestFromInterface(t *testing.T) {
	assert.Equal(t, value.Str("en"), value.FromInterface("en"))
	assert.Equal(t, value.Num(3), value.FromInterface(3))
	assert.Equal(t, value.Bool(true), value.FromInterface(true))
	assert.Equal(t, value.Unit, value.FromInterface(nil))
}
