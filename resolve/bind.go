package resolve

import (
	"strings"

	"github.com/otterlang/otterc/ast"
	"github.com/otterlang/otterc/depm"
	"github.com/otterlang/otterc/report"
)

func (r *Resolver) bindModule(mod *depm.Module) {
	modScope := r.result.ModuleScopes[mod]

	for _, f := range mod.Files {
		fileScope := newScope(modScope)
		r.bindUses(fileScope, modScope, mod, f.AST)
		for _, item := range f.AST.Items {
			r.bindItem(fileScope, item)
		}
	}
}

// bindUses installs one binding per `use`/`pub use` item. Plain `use`
// binds a module alias local to the importing file. `pub use` additionally
// re-exports into the module's own public scope, so other modules can
// reach it through a single `.` hop (spec.md §9 Open Question: single-level
// re-export visibility — it does not chase a further `pub use` inside the
// re-exported symbol itself).
func (r *Resolver) bindUses(fileScope, modScope *Scope, mod *depm.Module, m *ast.Module) {
	for _, item := range m.Items {
		switch it := item.(type) {
		case *ast.UseItem:
			if depm.IsFfiPath(it.Path) {
				alias := it.Alias
				if alias == "" {
					alias = it.Path[len(it.Path)-1]
				}
				ffiPath := strings.Join(it.Path[1:], "/")
				fileScope.define(alias, &Symbol{Name: alias, Kind: SymValue, Public: false, Span: it.Span(), FfiPath: ffiPath})
				continue
			}

			target, err := r.loader.ResolveModule(it.Path, mod.AbsPath)
			if err != nil {
				r.sink.Add(report.Errorf(report.CodeUnresolvedName, it.Span(), "%s", err.Error()))
				continue
			}
			alias := it.Alias
			if alias == "" {
				alias = it.Path[len(it.Path)-1]
			}
			fileScope.define(alias, &Symbol{Name: alias, Kind: SymModule, Public: false, Span: it.Span(), Module: target})

		case *ast.PubUseItem:
			r.bindPubUse(fileScope, modScope, mod, it)
		}
	}
}

func (r *Resolver) bindPubUse(fileScope, modScope *Scope, mod *depm.Module, it *ast.PubUseItem) {
	if it.Whole && depm.IsFfiPath(it.Path) {
		alias := it.Alias
		if alias == "" {
			alias = it.Path[len(it.Path)-1]
		}
		sym := &Symbol{Name: alias, Kind: SymValue, Public: true, Span: it.Span(), FfiPath: strings.Join(it.Path[1:], "/")}
		fileScope.define(alias, sym)
		modScope.define(alias, sym)
		return
	}

	if it.Whole {
		target, err := r.loader.ResolveModule(it.Path, mod.AbsPath)
		if err != nil {
			r.sink.Add(report.Errorf(report.CodeUnresolvedName, it.Span(), "%s", err.Error()))
			return
		}
		alias := it.Alias
		if alias == "" {
			alias = it.Path[len(it.Path)-1]
		}
		sym := &Symbol{Name: alias, Kind: SymModule, Public: true, Span: it.Span(), Module: target}
		fileScope.define(alias, sym)
		modScope.define(alias, sym)
		return
	}

	if len(it.Path) < 2 {
		r.sink.Add(report.Errorf(report.CodeUnresolvedName, it.Span(), "`pub use` of a specific symbol needs a module path and a symbol name"))
		return
	}
	modPath, symName := it.Path[:len(it.Path)-1], it.Path[len(it.Path)-1]

	target, err := r.loader.ResolveModule(modPath, mod.AbsPath)
	if err != nil {
		r.sink.Add(report.Errorf(report.CodeUnresolvedName, it.Span(), "%s", err.Error()))
		return
	}
	targetScope := r.result.ModuleScopes[target]
	orig, ok := targetScope.symbols[symName]
	if !ok || !orig.Public {
		r.sink.Add(report.Errorf(report.CodeUnresolvedName, it.Span(), "module has no public member %q to re-export", symName))
		return
	}

	alias := it.Alias
	if alias == "" {
		alias = symName
	}
	reexported := &Symbol{Name: alias, Kind: orig.Kind, Public: true, Span: it.Span(), Node: orig.Node, Module: orig.Module}
	fileScope.define(alias, reexported)
	modScope.define(alias, reexported)
}

func (r *Resolver) bindItem(sc *Scope, item ast.Item) {
	switch it := item.(type) {
	case *ast.FunctionItem:
		r.bindFunction(sc, it)
	case *ast.StructItem:
		for _, m := range it.Methods {
			r.bindFunction(sc, m)
		}
		for _, field := range it.Fields {
			if field.Default != nil {
				r.bindExpr(sc, field.Default)
			}
		}
	case *ast.LetItem:
		r.bindExpr(sc, it.Init)
	case *ast.ExprItem:
		r.bindExpr(sc, it.Value)
	case *ast.EnumItem, *ast.TypeAliasItem, *ast.UseItem, *ast.PubUseItem:
		// nothing to bind
	}
}

func (r *Resolver) bindFunction(sc *Scope, fn *ast.FunctionItem) {
	fnScope := newScope(sc)
	if fn.Receiver != "" {
		fnScope.define("self", &Symbol{Name: "self", Kind: SymValue, Span: fn.Span()})
	}
	for _, p := range fn.Params {
		if p.Default != nil {
			r.bindExpr(sc, p.Default) // defaults evaluate in the enclosing scope
		}
		fnScope.define(p.Name, &Symbol{Name: p.Name, Kind: SymValue, Span: fn.Span()})
	}
	r.bindStmts(fnScope, fn.Body)
}

func (r *Resolver) bindStmts(sc *Scope, stmts []ast.Stmt) {
	for _, s := range stmts {
		r.bindStmt(sc, s)
	}
}

func (r *Resolver) bindStmt(sc *Scope, stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		r.bindExpr(sc, s.Init)
		sc.define(s.Name, &Symbol{Name: s.Name, Kind: SymValue, Span: s.Span()})
	case *ast.AssignStmt:
		r.bindExpr(sc, s.Target)
		r.bindExpr(sc, s.Value)
	case *ast.ReturnStmt:
		if s.Value != nil {
			r.bindExpr(sc, s.Value)
		}
	case *ast.RaiseStmt:
		if s.Value != nil {
			r.bindExpr(sc, s.Value)
		}
	case *ast.IfStmt:
		r.bindExpr(sc, s.Cond)
		r.bindStmts(newScope(sc), s.Body)
		for _, el := range s.Elifs {
			r.bindExpr(sc, el.Cond)
			r.bindStmts(newScope(sc), el.Body)
		}
		if s.Else != nil {
			r.bindStmts(newScope(sc), s.Else)
		}
	case *ast.WhileStmt:
		r.bindExpr(sc, s.Cond)
		r.bindStmts(newScope(sc), s.Body)
	case *ast.ForStmt:
		r.bindExpr(sc, s.Iter)
		loopScope := newScope(sc)
		r.bindPattern(loopScope, s.Target)
		r.bindStmts(loopScope, s.Body)
	case *ast.TryStmt:
		r.bindStmts(newScope(sc), s.Body)
		for _, h := range s.Handlers {
			handlerScope := newScope(sc)
			if h.Name != "" {
				handlerScope.define(h.Name, &Symbol{Name: h.Name, Kind: SymValue, Span: s.Span()})
			}
			r.bindStmts(handlerScope, h.Body)
		}
		if s.Else != nil {
			r.bindStmts(newScope(sc), s.Else)
		}
		if s.Finally != nil {
			r.bindStmts(newScope(sc), s.Finally)
		}
	case *ast.ExprStmt:
		r.bindExpr(sc, s.Value)
	case *ast.BreakStmt, *ast.ContinueStmt, *ast.PassStmt:
		// nothing to bind
	}
}

func (r *Resolver) bindExpr(sc *Scope, expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Identifier:
		r.resolveIdent(sc, e)
	case *ast.MemberAccess:
		r.bindExpr(sc, e.Root)
		r.bindMemberAccess(e)
	case *ast.Call:
		r.bindExpr(sc, e.Callee)
		for _, a := range e.Args {
			r.bindExpr(sc, a)
		}
		for _, a := range e.KwArgs {
			r.bindExpr(sc, a)
		}
	case *ast.Index:
		r.bindExpr(sc, e.Seq)
		r.bindExpr(sc, e.Index)
	case *ast.Unary:
		r.bindExpr(sc, e.Operand)
	case *ast.Binary:
		r.bindExpr(sc, e.Lhs)
		r.bindExpr(sc, e.Rhs)
	case *ast.Logical:
		r.bindExpr(sc, e.Lhs)
		r.bindExpr(sc, e.Rhs)
	case *ast.Is:
		r.bindExpr(sc, e.Lhs)
		r.bindExpr(sc, e.Rhs)
	case *ast.Range:
		r.bindExpr(sc, e.Lo)
		r.bindExpr(sc, e.Hi)
	case *ast.ListLit:
		for _, el := range e.Elems {
			r.bindExpr(sc, el)
		}
	case *ast.DictLit:
		for _, entry := range e.Entries {
			r.bindExpr(sc, entry.Key)
			r.bindExpr(sc, entry.Value)
		}
	case *ast.StructLit:
		for _, v := range e.Fields {
			r.bindExpr(sc, v)
		}
		if e.Spread != nil {
			r.bindExpr(sc, e.Spread)
		}
	case *ast.Lambda:
		lamScope := newScope(sc)
		for _, p := range e.Params {
			if p.Default != nil {
				r.bindExpr(sc, p.Default)
			}
			lamScope.define(p.Name, &Symbol{Name: p.Name, Kind: SymValue, Span: e.Span()})
		}
		r.bindStmts(lamScope, e.Body)
	case *ast.Await:
		r.bindExpr(sc, e.Operand)
	case *ast.Spawn:
		r.bindExpr(sc, e.Operand)
	case *ast.Match:
		r.bindExpr(sc, e.Scrutinee)
		for _, c := range e.Cases {
			caseScope := newScope(sc)
			r.bindPattern(caseScope, c.Pattern)
			r.bindStmts(caseScope, c.Body)
		}
	case *ast.FString:
		for _, piece := range e.Pieces {
			if piece.Expr != nil {
				r.bindExpr(sc, piece.Expr)
			}
		}
	case *ast.ListComprehension:
		r.bindExpr(sc, e.Iter)
		compScope := newScope(sc)
		r.bindPattern(compScope, e.Target)
		if e.Filter != nil {
			r.bindExpr(compScope, e.Filter)
		}
		r.bindExpr(compScope, e.Yield)
	case *ast.DictComprehension:
		r.bindExpr(sc, e.Iter)
		compScope := newScope(sc)
		r.bindPattern(compScope, e.Target)
		if e.Filter != nil {
			r.bindExpr(compScope, e.Filter)
		}
		r.bindExpr(compScope, e.KeyExpr)
		r.bindExpr(compScope, e.ValExpr)
	case *ast.Literal:
		// nothing to bind
	}
}

// bindMemberAccess resolves `alias.Field` when Root is a module alias,
// recording the target symbol on the MemberAccess node's own id.
// Field access on a value (struct field access) is left to the type
// checker, which has the type information needed to find the field.
func (r *Resolver) bindMemberAccess(ma *ast.MemberAccess) {
	rootIdent, ok := ma.Root.(*ast.Identifier)
	if !ok {
		return
	}
	rootSym, ok := r.result.Bindings[rootIdent.ID()]
	if !ok || rootSym.Kind != SymModule {
		return
	}

	targetScope := r.result.ModuleScopes[rootSym.Module]
	sym, ok := targetScope.symbols[ma.Field]
	if !ok {
		r.sink.Add(report.Errorf(report.CodeUnresolvedName, ma.Span(), "module %q has no public member %q", rootSym.Name, ma.Field))
		return
	}
	if !sym.Public {
		r.sink.Add(report.Errorf(report.CodeVisibilityViol, ma.Span(), "%q is not public in module %q", ma.Field, rootSym.Name))
		return
	}
	r.result.Bindings[ma.ID()] = sym
}

func (r *Resolver) resolveIdent(sc *Scope, ident *ast.Identifier) {
	if sym, ok := sc.lookup(ident.Name); ok {
		r.result.Bindings[ident.ID()] = sym
		return
	}

	r.result.Bindings[ident.ID()] = poisoned
	if sc.alreadyFailed(ident.Name) {
		return
	}
	sc.markFailed(ident.Name)
	r.sink.Add(report.Errorf(report.CodeUnresolvedName, ident.Span(), "undefined name %q", ident.Name))
}

func (r *Resolver) bindPattern(sc *Scope, pat ast.Pattern) {
	switch p := pat.(type) {
	case *ast.BindingPattern:
		sc.define(p.Name, &Symbol{Name: p.Name, Kind: SymValue, Span: p.Span()})
	case *ast.EnumVariantPattern:
		for _, sub := range p.SubPats {
			r.bindPattern(sc, sub)
		}
	case *ast.StructDestructurePattern:
		for _, sub := range p.Fields {
			r.bindPattern(sc, sub)
		}
	case *ast.ListPattern:
		for _, sub := range p.Head {
			r.bindPattern(sc, sub)
		}
		if p.Rest != nil {
			sc.define(p.Rest.Name, &Symbol{Name: p.Rest.Name, Kind: SymValue, Span: p.Rest.Span()})
		}
		for _, sub := range p.Tail {
			r.bindPattern(sc, sub)
		}
	case *ast.WildcardPattern, *ast.LiteralPattern:
		// nothing to bind
	}
}
