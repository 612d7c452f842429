package interp

import (
	"strings"

	"github.com/ayaka-run/ayaka/internal/ast"
	"github.com/ayaka-run/ayaka/internal/value"
)

// EvalText produces the raw displayed string for a Text (spec.md §4.4):
// Ctx commands read a record local and stringify; Character/Res/Other
// commands are structurally preserved for the plugin pipeline and
// contribute nothing to the string (they evaluate to Unit here). The
// result is trimmed of leading and trailing whitespace.
func (t *VarTable) EvalText(tx *ast.Text) value.Raw {
	var sb strings.Builder
	for _, part := range tx.Parts {
		switch part.Kind {
		case ast.SubTextStr:
			sb.WriteString(part.Str)
		case ast.SubTextCmd:
			sb.WriteString(t.evalTextCommand(part.Cmd).GetStr())
		}
	}
	return value.Str(strings.TrimSpace(sb.String()))
}

func (t *VarTable) evalTextCommand(c ast.Command) value.Raw {
	switch c.Kind {
	case ast.CmdCtx:
		name := ""
		if len(c.Args) > 0 {
			name = c.Args[0]
		}
		if v, ok := (*t.Locals)[name]; ok {
			return v
		}
		t.warn("cannot find variable", "name", "$"+name)
		return value.Unit
	case ast.CmdCharacter, ast.CmdRes, ast.CmdOther:
		return value.Unit
	default:
		return value.Unit
	}
}
