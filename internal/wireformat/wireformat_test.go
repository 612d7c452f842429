package wireformat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/ayaka-run/ayaka/internal/value"
	"github.com/ayaka-run/ayaka/internal/wireformat"
)

func TestActionRoundTrip(t *testing.T) {
	a := wireformat.Action{
		Line: []wireformat.ActionLine{
			{Kind: wireformat.ActionLineChars, Chars: "hi Ada"},
			{Kind: wireformat.ActionLineBlock, Block: []string{"bold"}},
		},
		Switches: []wireformat.Switch{
			{Text: "go left", Enabled: true, Action: []byte{1, 2, 3}},
		},
		Character: &wireformat.Character{Name: "Ada"},
		Vars:      map[string]value.Raw{"flag": value.Bool(true)},
	}

	data, err := msgpack.Marshal(a)
	require.NoError(t, err)

	var got wireformat.Action
	require.NoError(t, msgpack.Unmarshal(data, &got))

	assert.Equal(t, a.Line, got.Line)
	assert.Equal(t, a.Switches, got.Switches)
	assert.Equal(t, a.Character, got.Character)
	assert.True(t, value.Bool(true).Equal(got.Vars["flag"]))
}

func TestPluginTypeRoundTrip(t *testing.T) {
	pt := wireformat.PluginType{Action: true, Text: []string{"markdown"}, Line: nil, Game: false}
	data, err := msgpack.Marshal(pt)
	require.NoError(t, err)
	var got wireformat.PluginType
	require.NoError(t, msgpack.Unmarshal(data, &got))
	assert.Equal(t, pt, got)
}

func TestGameRoundTrip(t *testing.T) {
	g := wireformat.Game{
		Title:    "Demo",
		BaseLang: "en",
		Plugins:  wireformat.PluginsConfig{Dir: "plugins"},
		Paras: map[string][]wireformat.Paragraph{
			"en": {{Tag: "start", Texts: []string{"hi $name"}, Next: "end"}},
		},
		Res: map[string]map[string]value.Raw{
			"en": {"title_image": value.Str("cover.png")},
		},
	}
	data, err := msgpack.Marshal(g)
	require.NoError(t, err)
	var got wireformat.Game
	require.NoError(t, msgpack.Unmarshal(data, &got))
	assert.Equal(t, g.Title, got.Title)
	assert.Equal(t, g.Paras, got.Paras)
	assert.True(t, value.Str("cover.png").Equal(got.Res["en"]["title_image"]))
}
