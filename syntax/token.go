package syntax

import "github.com/otterlang/otterc/report"

// Kind enumerates token kinds, following the teacher's untyped-int-constant
// style (bootstrap/syntax/token.go) extended with the layout tokens and
// f-string segment tokens spec.md §3/§4.A require.
type Kind int

const (
	TOK_EOF Kind = iota

	// Layout tokens, synthesized by the lexer from indentation (spec.md §4.A).
	TOK_NEWLINE
	TOK_INDENT
	TOK_DEDENT

	// Keywords.
	TOK_USE
	TOK_PUB
	TOK_TYPE
	TOK_STRUCT
	TOK_ENUM
	TOK_FN
	TOK_SELF
	TOK_LET
	TOK_IF
	TOK_ELIF
	TOK_ELSE
	TOK_WHILE
	TOK_FOR
	TOK_IN
	TOK_BREAK
	TOK_CONTINUE
	TOK_RETURN
	TOK_PASS
	TOK_TRY
	TOK_EXCEPT
	TOK_FINALLY
	TOK_RAISE
	TOK_MATCH
	TOK_CASE
	TOK_SPAWN
	TOK_AWAIT
	TOK_LAMBDA
	TOK_AND
	TOK_OR
	TOK_NOT
	TOK_IS
	TOK_TRUE
	TOK_FALSE
	TOK_NONE
	TOK_AS

	// Identifiers and literals.
	TOK_IDENT
	TOK_INTLIT
	TOK_FLOATLIT
	TOK_STRINGLIT
	TOK_FSTRING_BEGIN // start of an f-string: followed by a run of segments
	TOK_FSTRING_CHUNK // a literal text chunk inside an f-string
	TOK_FSTRING_EXPR  // an embedded-expression chunk; Value holds raw source
	TOK_FSTRING_END

	// Punctuation / operators.
	TOK_PLUS
	TOK_MINUS
	TOK_STAR
	TOK_SLASH
	TOK_PERCENT
	TOK_EQ
	TOK_NEQ
	TOK_LT
	TOK_LTEQ
	TOK_GT
	TOK_GTEQ
	TOK_ASSIGN
	TOK_PLUS_ASSIGN
	TOK_MINUS_ASSIGN
	TOK_STAR_ASSIGN
	TOK_SLASH_ASSIGN
	TOK_PERCENT_ASSIGN
	TOK_ARROW
	TOK_DOTDOT
	TOK_LPAREN
	TOK_RPAREN
	TOK_LBRACE
	TOK_RBRACE
	TOK_LBRACKET
	TOK_RBRACKET
	TOK_COMMA
	TOK_DOT
	TOK_COLON
	TOK_UNDERSCORE
)

// Token is a single lexical token: a discriminated variant over keywords,
// identifiers, literals, punctuation, and the synthetic layout tokens.
type Token struct {
	Kind  Kind
	Value string
	Span  report.Span

	// FStringParts holds the pre-split literal/expression segments when Kind
	// is TOK_FSTRING_BEGIN, per spec.md §3's "pre-split sequence" contract.
	FStringParts []FStringPart
}

// FStringPart is one literal-chunk or embedded-expression-source segment of
// an f-string literal.
type FStringPart struct {
	IsExpr bool
	Text   string // literal text, or unparsed expression source
	Span   report.Span
}

var keywords = map[string]Kind{
	"use":      TOK_USE,
	"pub":      TOK_PUB,
	"type":     TOK_TYPE,
	"struct":   TOK_STRUCT,
	"enum":     TOK_ENUM,
	"fn":       TOK_FN,
	"self":     TOK_SELF,
	"let":      TOK_LET,
	"if":       TOK_IF,
	"elif":     TOK_ELIF,
	"else":     TOK_ELSE,
	"while":    TOK_WHILE,
	"for":      TOK_FOR,
	"in":       TOK_IN,
	"break":    TOK_BREAK,
	"continue": TOK_CONTINUE,
	"return":   TOK_RETURN,
	"pass":     TOK_PASS,
	"try":      TOK_TRY,
	"except":   TOK_EXCEPT,
	"finally":  TOK_FINALLY,
	"raise":    TOK_RAISE,
	"match":    TOK_MATCH,
	"case":     TOK_CASE,
	"spawn":    TOK_SPAWN,
	"await":    TOK_AWAIT,
	"lambda":   TOK_LAMBDA,
	"and":      TOK_AND,
	"or":       TOK_OR,
	"not":      TOK_NOT,
	"is":       TOK_IS,
	"true":     TOK_TRUE,
	"false":    TOK_FALSE,
	"none":     TOK_NONE,
	"as":       TOK_AS,
	"_":        TOK_UNDERSCORE,
}
