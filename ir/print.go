package ir

import "strings"

// Repr renders m as readable text for debugging the lowerer; it is not a
// parseable format, and the otterc driver does not call it.
func (m *Module) Repr() string {
	var sb strings.Builder

	for _, e := range m.Externs {
		sb.WriteString("extern ")
		sb.WriteString(e.Name)
		sb.WriteString("\n")
	}
	if len(m.Externs) > 0 {
		sb.WriteByte('\n')
	}

	for _, g := range m.Globals {
		if g.Public {
			sb.WriteString("pub ")
		}
		sb.WriteString("global @")
		sb.WriteString(g.Name)
		sb.WriteString(" = ")
		if g.Init != nil {
			sb.WriteString(g.Init.Repr())
		}
		sb.WriteByte('\n')
	}
	if len(m.Globals) > 0 {
		sb.WriteByte('\n')
	}

	for _, f := range m.Funcs {
		sb.WriteString(f.Repr())
		sb.WriteByte('\n')
	}

	return sb.String()
}

func (f *Func) Repr() string {
	var sb strings.Builder
	if f.Public {
		sb.WriteString("pub ")
	}
	sb.WriteString("func @")
	sb.WriteString(f.Name)
	sb.WriteByte('(')
	for i, p := range f.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.Repr())
		sb.WriteString(": ")
		sb.WriteString(p.Typ.Repr())
	}
	sb.WriteString(") ")
	sb.WriteString(f.Ret.Repr())
	sb.WriteString(" {\n")
	for _, b := range f.Blocks {
		sb.WriteString(b.Repr())
	}
	sb.WriteString("}\n")
	return sb.String()
}

func (b *Block) Repr() string {
	var sb strings.Builder
	sb.WriteString(b.Name)
	sb.WriteString(":\n")
	for _, instr := range b.Instrs {
		sb.WriteString("  ")
		sb.WriteString(instr.Repr())
		sb.WriteByte('\n')
	}
	if b.Term != nil {
		sb.WriteString("  ")
		sb.WriteString(b.Term.Repr())
		sb.WriteByte('\n')
	}
	return sb.String()
}
