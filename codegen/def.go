package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/value"

	oir "github.com/otterlang/otterc/ir"
)

// declareExtern declares a runtime or FFI symbol as an external LLVM
// function, with no synthesized env parameter: an extern is an ordinary
// C function, never a closure.
func (g *Generator) declareExtern(e *oir.Extern) {
	params := make([]*ir.Param, len(e.Params))
	for i, p := range e.Params {
		params[i] = ir.NewParam("", g.convType(p))
	}
	fn := g.mod.NewFunc(e.Name, g.convReturnType(e.Ret), params...)
	fn.Linkage = enum.LinkageExternal
	g.externs[e.Name] = fn
}

// declareGlobal declares a module-scope `let` as an LLVM global. A nil
// Init (anything package lower couldn't fold to a literal) gets a
// zero-valued initializer; __otter_init fills it in at program startup.
func (g *Generator) declareGlobal(gl *oir.Global) {
	llType := g.convType(gl.Typ)
	var init constant.Constant
	if gl.Init != nil {
		init = g.constVal(gl.Init)
	} else {
		init = nullOf(llType)
	}
	gv := g.mod.NewGlobalDef(gl.Name, init)
	if gl.Public {
		gv.Linkage = enum.LinkageExternal
	} else {
		gv.Linkage = enum.LinkageInternal
	}
	g.globals[gl.Name] = gv
}

// declareFunc registers f's LLVM signature, prepending a synthesized
// env parameter unless f's own Params already lead with one (package
// lower's lowerLambdaBody declares its own __env, since a lambda body is
// the one place that needs a register to FieldAddr into for its
// captures).
func (g *Generator) declareFunc(f *oir.Func) {
	var params []*ir.Param
	if !hasExplicitEnv(f) {
		params = append(params, ir.NewParam("__otter_env", envParamType))
	}
	for _, p := range f.Params {
		params = append(params, ir.NewParam(p.Name, g.convType(p.Typ)))
	}

	llFunc := g.mod.NewFunc(f.Name, g.convReturnType(f.Ret), params...)
	if f.Public {
		llFunc.Linkage = enum.LinkageExternal
	} else {
		llFunc.Linkage = enum.LinkageInternal
	}
	g.funcs[f.Name] = llFunc
}

func hasExplicitEnv(f *oir.Func) bool {
	return len(f.Params) > 0 && f.Params[0].Name == "__env"
}

// generateFuncBody fills in f's previously declared LLVM function: one
// llir block per ir.Block (created up front so a forward branch always
// has a target to resolve), then every instruction and terminator.
func (g *Generator) generateFuncBody(f *oir.Func) {
	if len(f.Blocks) == 0 {
		return
	}
	llFunc := g.funcs[f.Name]

	g.regs = map[*oir.Reg]value.Value{}
	offset := 0
	if !hasExplicitEnv(f) {
		offset = 1
	}
	for i, p := range f.Params {
		g.regs[p] = llFunc.Params[offset+i]
	}

	blocks := make(map[string]*ir.Block, len(f.Blocks))
	for _, b := range f.Blocks {
		blocks[b.Name] = llFunc.NewBlock(b.Name)
	}

	for _, b := range f.Blocks {
		llB := blocks[b.Name]
		for _, instr := range b.Instrs {
			g.generateInstr(llB, instr)
		}
		g.generateTerminator(llFunc, llB, b.Term, blocks)
	}
}
