package check

import "github.com/otterlang/otterc/types"

// pushScope/popScope/defineLocal/lookupLocal give the checker its own
// lexical scope stack for inferred variable types, grounded directly on
// bootstrap/walk/walker.go's Walker.localScopes/pushScope/popScope/
// defineLocal/lookup. Name resolution already validated every reference,
// so this scope stack only needs to carry types, not full symbols; it is
// kept separate from resolve.Scope because checking and resolution are
// distinct passes here (the teacher interleaves them into one walk).
func (c *Checker) pushScope() {
	c.localScopes = append(c.localScopes, map[string]types.Type{})
}

func (c *Checker) popScope() {
	c.localScopes = c.localScopes[:len(c.localScopes)-1]
}

func (c *Checker) defineLocal(name string, t types.Type) {
	c.localScopes[len(c.localScopes)-1][name] = t
}

func (c *Checker) lookupLocal(name string) (types.Type, bool) {
	for i := len(c.localScopes) - 1; i >= 0; i-- {
		if t, ok := c.localScopes[i][name]; ok {
			return t, true
		}
	}
	return nil, false
}
