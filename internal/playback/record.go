package playback

import (
	"github.com/ayaka-run/ayaka/internal/value"
	"github.com/ayaka-run/ayaka/internal/wireformat"
)

// HistoryEntry pairs a cooked Action with the paragraph position it was
// produced at. wireformat.Action itself carries no position — the ABI never
// needs one — but the playback engine's own save-record format needs it to
// answer `current_visited` (spec.md §4.6) without replaying history.
type HistoryEntry struct {
	Action wireformat.Action `json:"action"`
	Tag    string            `json:"tag"`
	Act    int               `json:"act"`
}

// RawContext is the serializable playback position (spec.md §4.6, §8): the
// current paragraph and action index, the record locals, and history.
// deserialize(serialize(rc)) == rc must hold exactly (spec.md §8).
type RawContext struct {
	CurPara string         `json:"cur_para"`
	CurAct  int            `json:"cur_act"`
	Locals  value.Map      `json:"locals"`
	History []HistoryEntry `json:"history"`
}

// NewRawContext returns an empty record at the given starting paragraph.
func NewRawContext(startTag string) RawContext {
	return RawContext{
		CurPara: startTag,
		CurAct:  0,
		Locals:  value.NewMap(),
		History: nil,
	}
}
