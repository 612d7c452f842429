package ast

import "strings"

// ParseText is a reduced-functionality script-text scanner, not the script
// language's real parser (spec.md §1 treats that as an external
// collaborator). It recognizes only `$name` variable interpolation inside
// otherwise-literal text, which is enough to drive the playback engine's
// paragraph Texts strings end to end. A real parser would additionally emit
// Character/Res/Other command nodes from dedicated script syntax; this
// scanner never produces those, it only ever builds SubTextStr and
// CmdCtx SubTextCmd nodes.
//
// `$` not followed by an identifier character is kept as a literal dollar
// sign, and `$$` escapes to a literal `$`.
func ParseText(s string) *Text {
	tx := &Text{}
	var lit strings.Builder

	flush := func() {
		if lit.Len() == 0 {
			return
		}
		tx.Parts = append(tx.Parts, SubText{Kind: SubTextStr, Str: lit.String()})
		lit.Reset()
	}

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if c != '$' {
			lit.WriteRune(c)
			continue
		}
		if i+1 < len(runes) && runes[i+1] == '$' {
			lit.WriteRune('$')
			i++
			continue
		}
		j := i + 1
		for j < len(runes) && isIdentRune(runes[j]) {
			j++
		}
		if j == i+1 {
			lit.WriteRune('$')
			continue
		}
		name := string(runes[i+1 : j])
		flush()
		tx.Parts = append(tx.Parts, SubText{
			Kind: SubTextCmd,
			Cmd:  Command{Kind: CmdCtx, Args: []string{name}},
		})
		i = j - 1
	}
	flush()
	return tx
}

func isIdentRune(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
